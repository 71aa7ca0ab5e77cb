package fleet

import (
	"fmt"
	"math"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// Per-tick simulation constants.
const (
	DelayThreshold    = 0.999
	TransitStep       = 0.3
	DelayedStep       = 0.05
	FuelBurnPerTick   = 0.05
	LitersPerTick     = 0.1
	DefaultFuelPrice  = 68.50
	MaxProgress       = 100.0
	MaxFuelPercentage = 100.0
)

// Tick advances every moving vehicle by one step. Only In transit vehicles
// draw from rnd, one draw each, in collection order.
func Tick(s State, rnd Random) (State, Effects) {
	next := s.Clone()
	var fx Effects

	price := s.Settings.Costs.FuelPrice
	if price <= 0 {
		price = DefaultFuelPrice
	}

	for i := range next.Vehicles {
		v := &next.Vehicles[i]

		if v.Status == models.StatusInTransit && rnd.Float64() > DelayThreshold {
			v.Status = models.StatusDelayed
			fx.notify("Trip Delayed", fmt.Sprintf("%s encountered unexpected delay", v.Name), models.SeverityAlert)
			fx.toast(fmt.Sprintf("%s reported a delay", v.Name), models.SeverityWarning)
			continue
		}

		if !v.Status.Moving() || v.Progress >= MaxProgress {
			continue
		}

		step := TransitStep
		if v.Status == models.StatusDelayed {
			step = DelayedStep
		}
		v.Progress = models.Round2(math.Min(MaxProgress, v.Progress+step))
		v.FuelLevel = models.Round2(math.Max(0, v.FuelLevel-FuelBurnPerTick))

		if v.Costs != nil {
			v.Costs.Fuel += LitersPerTick * price
			v.Costs.Recompute()
		}
	}

	return next, fx
}
