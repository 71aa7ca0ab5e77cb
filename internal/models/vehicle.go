package models

// VehicleStatus is the operational state of a fleet asset.
type VehicleStatus string

const (
	StatusInTransit   VehicleStatus = "In transit"
	StatusDelayed     VehicleStatus = "Delayed"
	StatusStationary  VehicleStatus = "Stationary"
	StatusLoading     VehicleStatus = "Loading"
	StatusUnloading   VehicleStatus = "Unloading"
	StatusMaintenance VehicleStatus = "Maintenance"
)

// IsValidVehicleStatus checks if a status is one of the known vehicle states
func IsValidVehicleStatus(s VehicleStatus) bool {
	switch s {
	case StatusInTransit, StatusDelayed, StatusStationary, StatusLoading, StatusUnloading, StatusMaintenance:
		return true
	default:
		return false
	}
}

// Moving reports whether the tick advances a vehicle in this status.
func (s VehicleStatus) Moving() bool {
	return s == StatusInTransit || s == StatusDelayed
}

// VehicleType is one of the four vehicle classes in the fleet.
type VehicleType string

const (
	TypeCarCarrier        VehicleType = "Car Carrier"
	TypeMotorcycleCarrier VehicleType = "Motorcycle Carrier"
	TypeClosedVan6W       VehicleType = "6W Closed Van"
	TypeWingvan10W        VehicleType = "10W Wingvan"
)

// IsValidVehicleType checks if a type is one of the four vehicle classes
func IsValidVehicleType(t VehicleType) bool {
	switch t {
	case TypeCarCarrier, TypeMotorcycleCarrier, TypeClosedVan6W, TypeWingvan10W:
		return true
	default:
		return false
	}
}

// UnassignedDriver is the display name of a vehicle with no driver.
const UnassignedDriver = "Unassigned"

// Vehicle represents one fleet asset and its current operational snapshot.
type Vehicle struct {
	ID          string        `bson:"id" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Type        VehicleType   `bson:"type" json:"type"`
	Status      VehicleStatus `bson:"status" json:"status"`
	Origin      string        `bson:"origin" json:"origin"`
	Destination string        `bson:"destination" json:"destination"`
	ETA         string        `bson:"eta" json:"eta"`
	Progress    float64       `bson:"progress" json:"progress"`
	// DriverID is 0 when no driver is assigned. Driver is the display name only.
	DriverID   int     `bson:"driver_id" json:"driverId"`
	Driver     string  `bson:"driver" json:"driver"`
	FuelLevel  float64 `bson:"fuel_level" json:"fuelLevel"`
	CurrentJob string  `bson:"current_job" json:"currentJob"`

	Costs              *CostBreakdown      `bson:"costs,omitempty" json:"costs,omitempty"`
	MaintenanceHistory []MaintenanceRecord `bson:"maintenance_history,omitempty" json:"maintenanceHistory,omitempty"`
	PurchaseDate       string              `bson:"purchase_date,omitempty" json:"purchaseDate,omitempty"`
	TotalDistance      float64             `bson:"total_distance,omitempty" json:"totalDistance,omitempty"`
}

// Clone returns a deep copy of the vehicle.
func (v Vehicle) Clone() Vehicle {
	out := v
	if v.Costs != nil {
		c := v.Costs.Clone()
		out.Costs = &c
	}
	if v.MaintenanceHistory != nil {
		out.MaintenanceHistory = append([]MaintenanceRecord(nil), v.MaintenanceHistory...)
	}
	return out
}
