package fleet

import (
	"time"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// Seed returns the RVL Movers fleet, roster and default settings that a new
// process starts from.
func Seed() State {
	return State{
		Vehicles: seedVehicles(),
		Drivers:  seedDrivers(),
		Settings: models.DefaultSettings(),
	}
}

func costs(fuel, tolls, labor, maint, misc float64, tolled ...models.TollEntry) *models.CostBreakdown {
	c := models.NewCostBreakdown()
	c.Fuel, c.Tolls, c.Labor, c.Maintenance, c.Miscellaneous = fuel, tolls, labor, maint, misc
	c.TollEntries = append(c.TollEntries, tolled...)
	c.Recompute()
	return c
}

func seedVehicles() []models.Vehicle {
	return []models.Vehicle{
		{
			ID: "1", Name: "RVL-1005", Type: models.TypeWingvan10W, Status: models.StatusInTransit,
			Origin: "Sta. Rosa Depot", Destination: "Batangas Port", ETA: "16:45", Progress: 65,
			DriverID: 1, Driver: "R. Magsaysay", FuelLevel: 58, CurrentJob: "Bulk Parts - Toyota",
			Costs: costs(4200, 840, 2500, 500, 200,
				models.TollEntry{ID: "t1", Timestamp: "09:30 AM", Location: "SLEX Sta. Rosa", Provider: models.ProviderAutoSweep, Amount: 0},
				models.TollEntry{ID: "t2", Timestamp: "10:15 AM", Location: "STAR Tollway Lipa", Provider: models.ProviderAutoSweep, Amount: 340},
			),
			PurchaseDate: "2021-03-15", TotalDistance: 184520,
			MaintenanceHistory: []models.MaintenanceRecord{
				{ID: "m1", Date: "2025-08-02", Service: "PMS 180,000 km", Mechanic: "Sta. Rosa Motorpool", Cost: 18500, Odometer: 180000, Status: models.MaintenanceCompleted},
			},
		},
		{
			ID: "2", Name: "RVL-6022", Type: models.TypeCarCarrier, Status: models.StatusLoading,
			Origin: "Cupang HQ", Destination: "Cebu Dealership", ETA: "Pending", Progress: 15,
			DriverID: 2, Driver: "J. Santos", FuelLevel: 95, CurrentJob: "New Vehicle Distribution (8 Units)",
			Costs: costs(0, 0, 1200, 0, 0),
		},
		{
			ID: "3", Name: "RVL-4101", Type: models.TypeClosedVan6W, Status: models.StatusInTransit,
			Origin: "Cavite Hub", Destination: "Parañaque City", ETA: "13:00", Progress: 80,
			DriverID: 3, Driver: "M. Reyes", FuelLevel: 42, CurrentJob: "Lazada Logistics Haul",
			Costs: costs(1500, 184, 1500, 200, 100,
				models.TollEntry{ID: "t3", Timestamp: "08:00 AM", Location: "CAVITEX", Provider: models.ProviderEasyTrip, Amount: 184},
			),
		},
		{
			ID: "4", Name: "RVL-9003", Type: models.TypeMotorcycleCarrier, Status: models.StatusUnloading,
			Origin: "Batangas (Soro-Soro)", Destination: "Laguna Technopark", ETA: "Arrived", Progress: 100,
			DriverID: 4, Driver: "B. Dantes", FuelLevel: 30, CurrentJob: "Honda MC Delivery (35 Units)",
			Costs: costs(2800, 450, 1800, 150, 50),
		},
		{
			ID: "5", Name: "RVL-1012", Type: models.TypeWingvan10W, Status: models.StatusDelayed,
			Origin: "Manila North Harbor", Destination: "Sta. Rosa Depot", ETA: "19:30", Progress: 25,
			DriverID: 5, Driver: "E. Manzano", FuelLevel: 68, CurrentJob: "Raw Materials Import",
			Costs: costs(1200, 0, 1800, 300, 150),
		},
		{
			ID: "6", Name: "RVL-6055", Type: models.TypeCarCarrier, Status: models.StatusMaintenance,
			Origin: "Sta. Rosa Motorpool", Destination: "-", ETA: "-",
			Driver: models.UnassignedDriver, FuelLevel: 0, CurrentJob: "Hydraulic Repair",
			MaintenanceHistory: []models.MaintenanceRecord{
				{ID: "m2", Date: "2025-10-10", Service: "Hydraulic ramp overhaul", Mechanic: "Sta. Rosa Motorpool", Cost: 42000, Odometer: 251300, Status: models.MaintenancePending},
			},
		},
		{
			ID: "7", Name: "RVL-4088", Type: models.TypeClosedVan6W, Status: models.StatusStationary,
			Origin: "Cupang HQ", Destination: "-", ETA: "-", Driver: "K. Yap", FuelLevel: 100, CurrentJob: "Available",
		},
		{
			ID: "8", Name: "RVL-9010", Type: models.TypeMotorcycleCarrier, Status: models.StatusStationary,
			Origin: "Cavite Hub", Destination: "-", ETA: "-", Driver: "A. Muhlach", FuelLevel: 85, CurrentJob: "Available",
		},
		{
			ID: "9", Name: "RVL-1025", Type: models.TypeWingvan10W, Status: models.StatusStationary,
			Origin: "Batangas (Soro-Soro)", Destination: "-", ETA: "-", Driver: "P. Pascual", FuelLevel: 78, CurrentJob: "Available",
		},
	}
}

func seedDrivers() []models.Driver {
	return []models.Driver{
		{ID: 1, Name: "Ramon Magsaysay", Status: models.DriverOnTrip, Vehicle: "RVL-1005", Rating: 4.9, Trips: 312, License: "N01-15-001234"},
		{ID: 2, Name: "Juan Santos", Status: models.DriverOnTrip, Vehicle: "RVL-6022", Rating: 4.8, Trips: 205, License: "N02-16-005678"},
		{ID: 3, Name: "Miguel Reyes", Status: models.DriverOnTrip, Vehicle: "RVL-4101", Rating: 4.7, Trips: 188, License: "N03-18-009012"},
		{ID: 4, Name: "Dingdong Dantes", Status: models.DriverOnTrip, Vehicle: "RVL-9003", Rating: 5.0, Trips: 420, License: "N01-12-003456"},
		{ID: 5, Name: "Edu Manzano", Status: models.DriverOnTrip, Vehicle: "RVL-1012", Rating: 4.6, Trips: 150, License: "N04-19-007890"},
		{ID: 6, Name: "Vhong Navarro", Status: models.DriverAvailable, Vehicle: models.NoVehicle, Rating: 4.5, Trips: 95, License: "N02-20-002345"},
		{ID: 7, Name: "Coco Martin", Status: models.DriverOffDuty, Vehicle: models.NoVehicle, Rating: 4.9, Trips: 280, License: "N01-14-006789"},
	}
}

// SeedNotification is a notification present before any action ran.
type SeedNotification struct {
	NoticeDraft
	Age  time.Duration
	Read bool
}

// SeedNotifications returns the feed a fresh process starts with, oldest first.
func SeedNotifications() []SeedNotification {
	return []SeedNotification{
		{NoticeDraft{"Job Completed", "RVL-105 arrived at BGC.", models.SeveritySuccess}, 3 * time.Hour, true},
		{NoticeDraft{"Fuel Threshold", "RVL-550 fuel low (18%).", models.SeverityWarning}, 2 * time.Hour, false},
		{NoticeDraft{"Trip Started", "RVL-402 started trip to QC.", models.SeverityInfo}, time.Hour, false},
		{NoticeDraft{"Maintenance Alert", "RVL-801 is due for PMS today.", models.SeverityAlert}, 10 * time.Minute, false},
	}
}

// SampleTelemetry is the day trace fed to the maintenance predictor when a
// vehicle has no live telemetry.
func SampleTelemetry() []models.TelemetryPoint {
	return []models.TelemetryPoint{
		{Time: "08:00", Consumption: 12, Speed: 45},
		{Time: "10:00", Consumption: 18, Speed: 60},
		{Time: "12:00", Consumption: 8, Speed: 0},
		{Time: "14:00", Consumption: 22, Speed: 75},
		{Time: "16:00", Consumption: 20, Speed: 65},
		{Time: "18:00", Consumption: 15, Speed: 40},
	}
}
