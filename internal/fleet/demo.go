package fleet

import (
	"fmt"
	"math"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// Demo triggers. Each picks the first vehicle matching a coarse predicate;
// when none matches it only emits a warning toast.

func firstVehicle(s State, match func(models.Vehicle) bool) int {
	for i := range s.Vehicles {
		if match(s.Vehicles[i]) {
			return i
		}
	}
	return -1
}

// TriggerDelay forces the first In transit vehicle into Delayed.
func TriggerDelay(s State) (State, Effects, error) {
	var fx Effects
	i := firstVehicle(s, func(v models.Vehicle) bool { return v.Status == models.StatusInTransit })
	if i < 0 {
		fx.toast("No active vehicles to delay", models.SeverityWarning)
		return s, fx, nil
	}

	next := s.Clone()
	v := &next.Vehicles[i]
	v.Status = models.StatusDelayed

	fx.notify("Critical Alert", fmt.Sprintf("Accident reported for %s. Traffic halted.", v.Name), models.SeverityAlert)
	fx.toast(fmt.Sprintf("%s status updated to DELAYED", v.Name), models.SeverityError)
	return next, fx, nil
}

// TriggerFuelSpike drops 25 points of fuel from the first vehicle not in
// maintenance, never below 5.
func TriggerFuelSpike(s State) (State, Effects, error) {
	var fx Effects
	i := firstVehicle(s, func(v models.Vehicle) bool { return v.Status != models.StatusMaintenance })
	if i < 0 {
		fx.toast("No vehicles available for fuel simulation", models.SeverityWarning)
		return s, fx, nil
	}

	next := s.Clone()
	v := &next.Vehicles[i]
	v.FuelLevel = models.Round2(math.Max(5, v.FuelLevel-25))

	fx.notify("Fuel Theft Alert", "Abnormal fuel drop detected on "+v.Name, models.SeverityWarning)
	fx.toast("Fuel anomaly detected", models.SeverityWarning)
	return next, fx, nil
}

// TriggerMaintenance sends the first stationary vehicle to the motorpool.
func TriggerMaintenance(s State) (State, Effects, error) {
	var fx Effects
	i := firstVehicle(s, func(v models.Vehicle) bool { return v.Status == models.StatusStationary })
	if i < 0 {
		fx.toast("No stationary vehicles available for maintenance", models.SeverityWarning)
		return s, fx, nil
	}

	next := s.Clone()
	v := &next.Vehicles[i]
	v.Status = models.StatusMaintenance

	fx.notify("Diagnostics Alert", "Engine code P0300 detected on "+v.Name, models.SeverityWarning)
	fx.toast("Vehicle marked for maintenance", models.SeverityWarning)
	return next, fx, nil
}
