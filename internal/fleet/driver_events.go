package fleet

import (
	"fmt"
	"strconv"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// DriverVehicle resolves the vehicle a driver is operating: first by the
// vehicle's driver id, then by an exact match on the driver's display name
// or on the driver's assigned vehicle name.
func DriverVehicle(s State, d models.Driver) int {
	for i := range s.Vehicles {
		if s.Vehicles[i].DriverID == d.ID {
			return i
		}
	}
	for i := range s.Vehicles {
		v := s.Vehicles[i]
		if v.Driver == d.Name || (d.Vehicle != models.NoVehicle && v.Name == d.Vehicle) {
			return i
		}
	}
	return -1
}

// driverEvent resolves the driver and their vehicle. A driver with no
// vehicle is a missing match: an error toast and no mutation.
func driverEvent(s State, driverID int) (models.Driver, int, Effects, error) {
	d, ok := s.Driver(driverID)
	if !ok {
		return d, -1, Effects{}, fmt.Errorf("%w: %d", ErrDriverNotFound, driverID)
	}
	i := DriverVehicle(s, d)
	if i < 0 {
		var fx Effects
		fx.toast("No vehicle assigned to "+d.Name, models.SeverityError)
		return d, -1, fx, nil
	}
	return d, i, Effects{}, nil
}

// DriverStatusChange applies a status reported from the driver app.
func DriverStatusChange(s State, driverID int, status models.VehicleStatus) (State, Effects, error) {
	if status != models.StatusInTransit && status != models.StatusStationary {
		return s, Effects{}, fmt.Errorf("%w: drivers report In transit or Stationary, got %q", ErrInvalidInput, status)
	}
	d, i, fx, err := driverEvent(s, driverID)
	if err != nil || i < 0 {
		return s, fx, err
	}

	next := s.Clone()
	next.Vehicles[i].Status = status

	fx.notify("Driver Update", fmt.Sprintf("%s status changed to %s", d.Name, status), models.SeverityInfo)
	fx.toast(fmt.Sprintf("Driver status: %s", status), models.SeverityInfo)
	return next, fx, nil
}

// DriverLogFuel records a refuel from the driver app. The tank is full
// afterwards and the cost lands on the fuel component.
func DriverLogFuel(s State, driverID int, e models.FuelEntry, env Env) (State, Effects, error) {
	if err := validFuel(e); err != nil {
		return s, Effects{}, err
	}
	d, i, fx, err := driverEvent(s, driverID)
	if err != nil || i < 0 {
		return s, fx, err
	}
	if e.ID == "" {
		e.ID = env.id("fuel")
	}
	if e.Timestamp == "" {
		e.Timestamp = env.stamp()
	}

	next := s.Clone()
	v := &next.Vehicles[i]
	if v.Costs == nil {
		v.Costs = models.NewCostBreakdown()
	}
	priceFuel(&e, next.Settings)
	v.FuelLevel = MaxFuelPercentage
	v.Costs.FuelEntries = append(v.Costs.FuelEntries, e)
	v.Costs.Fuel += e.TotalCost
	v.Costs.Recompute()

	fx.notify("Fuel Log Received", fmt.Sprintf("%s logged fuel: ₱%s", d.Name, formatAmount(e.TotalCost)), models.SeverityInfo)
	fx.toast("Fuel log synced", models.SeveritySuccess)
	return next, fx, nil
}

// DriverLogToll records a toll paid on the road.
func DriverLogToll(s State, driverID int, e models.TollEntry, env Env) (State, Effects, error) {
	if err := nonNegative("toll amount", e.Amount); err != nil {
		return s, Effects{}, err
	}
	_, i, fx, err := driverEvent(s, driverID)
	if err != nil || i < 0 {
		return s, fx, err
	}
	if e.ID == "" {
		e.ID = env.id("toll")
	}
	if e.Timestamp == "" {
		e.Timestamp = env.stamp()
	}
	if e.Provider == "" {
		e.Provider = models.ProviderAutoSweep
	}
	e.Amount = models.Round2(e.Amount)

	next := s.Clone()
	v := &next.Vehicles[i]
	if v.Costs == nil {
		v.Costs = models.NewCostBreakdown()
	}
	v.Costs.TollEntries = append(v.Costs.TollEntries, e)
	v.Costs.Tolls += e.Amount
	v.Costs.Recompute()

	fx.toast("Toll expense synced", models.SeveritySuccess)
	return next, fx, nil
}

// IssueReport is a problem raised from the driver app.
type IssueReport struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// DriverReportIssue delays the driver's vehicle. There is no triage: every
// report is an alert.
func DriverReportIssue(s State, driverID int, in IssueReport) (State, Effects, error) {
	if in.Type == "" {
		return s, Effects{}, fmt.Errorf("%w: issue type is required", ErrInvalidInput)
	}
	d, i, fx, err := driverEvent(s, driverID)
	if err != nil || i < 0 {
		return s, fx, err
	}

	next := s.Clone()
	next.Vehicles[i].Status = models.StatusDelayed

	fx.notify("Critical Driver Issue", fmt.Sprintf("%s reported: %s - %s", d.Name, in.Type, in.Description), models.SeverityAlert)
	fx.toast("Issue report received", models.SeverityError)
	return next, fx, nil
}

// formatAmount prints a peso amount without trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(models.Round2(v), 'f', -1, 64)
}
