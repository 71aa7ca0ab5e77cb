package fleet

import (
	"fmt"
	"math"
)

// costTolerance absorbs two-decimal rounding of the components.
const costTolerance = 0.01

// CheckInvariants verifies a snapshot before it is committed: unique vehicle
// and driver ids, cost totals that match their components, and progress and
// fuel level within 0..100.
func CheckInvariants(s State) error {
	seen := make(map[string]struct{}, len(s.Vehicles))
	for _, v := range s.Vehicles {
		if v.ID == "" {
			return fmt.Errorf("%w: vehicle %s has no id", ErrInvariant, v.Name)
		}
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("%w: duplicate vehicle id %s", ErrInvariant, v.ID)
		}
		seen[v.ID] = struct{}{}

		if v.Progress < 0 || v.Progress > MaxProgress {
			return fmt.Errorf("%w: vehicle %s progress %.2f", ErrInvariant, v.ID, v.Progress)
		}
		if v.FuelLevel < 0 || v.FuelLevel > MaxFuelPercentage {
			return fmt.Errorf("%w: vehicle %s fuel level %.2f", ErrInvariant, v.ID, v.FuelLevel)
		}
		if c := v.Costs; c != nil && math.Abs(c.Total-c.Sum()) > costTolerance {
			return fmt.Errorf("%w: vehicle %s cost total %.2f != %.2f", ErrInvariant, v.ID, c.Total, c.Sum())
		}
	}

	drivers := make(map[int]struct{}, len(s.Drivers))
	for _, d := range s.Drivers {
		if _, dup := drivers[d.ID]; dup {
			return fmt.Errorf("%w: duplicate driver id %d", ErrInvariant, d.ID)
		}
		drivers[d.ID] = struct{}{}
	}
	return nil
}
