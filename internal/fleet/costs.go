package fleet

import (
	"fmt"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// Ledger edits keep a running aggregate: each edit applies the difference
// between the old and new entry to its component, then Total is recomputed.
// Components also carry tick accrual and seeded amounts that have no entry,
// so they are never rebuilt from the entries alone.

func withCosts(s State, vehicleID string, edit func(c *models.CostBreakdown, settings models.Settings) error) (State, error) {
	i := s.VehicleIndex(vehicleID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrVehicleNotFound, vehicleID)
	}
	next := s.Clone()
	v := &next.Vehicles[i]
	if v.Costs == nil {
		v.Costs = models.NewCostBreakdown()
	}
	if err := edit(v.Costs, next.Settings); err != nil {
		return s, err
	}
	v.Costs.Recompute()
	return next, nil
}

func nonNegative(what string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, what)
	}
	return nil
}

// AddTollEntry appends a toll charge to the vehicle's ledger.
func AddTollEntry(s State, vehicleID string, e models.TollEntry, env Env) (State, Effects, error) {
	if err := nonNegative("toll amount", e.Amount); err != nil {
		return s, Effects{}, err
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

	next, err := withCosts(s, vehicleID, func(c *models.CostBreakdown, _ models.Settings) error {
		c.TollEntries = append(c.TollEntries, e)
		c.Tolls += e.Amount
		return nil
	})
	if err != nil {
		return s, Effects{}, err
	}
	var fx Effects
	fx.toast("Toll entry added", models.SeveritySuccess)
	return next, fx, nil
}

// UpdateTollEntry replaces a toll entry and moves the tolls component by
// the change in amount.
func UpdateTollEntry(s State, vehicleID, entryID string, e models.TollEntry) (State, Effects, error) {
	if err := nonNegative("toll amount", e.Amount); err != nil {
		return s, Effects{}, err
	}
	e.ID = entryID
	e.Amount = models.Round2(e.Amount)

	next, err := withCosts(s, vehicleID, func(c *models.CostBreakdown, _ models.Settings) error {
		for i := range c.TollEntries {
			if c.TollEntries[i].ID == entryID {
				c.Tolls += e.Amount - c.TollEntries[i].Amount
				c.TollEntries[i] = e
				return nil
			}
		}
		return fmt.Errorf("%w: toll %s", ErrEntryNotFound, entryID)
	})
	if err != nil {
		return s, Effects{}, err
	}
	var fx Effects
	fx.toast("Toll entry updated", models.SeveritySuccess)
	return next, fx, nil
}

// RemoveTollEntry drops a toll entry and its amount.
func RemoveTollEntry(s State, vehicleID, entryID string) (State, Effects, error) {
	next, err := withCosts(s, vehicleID, func(c *models.CostBreakdown, _ models.Settings) error {
		for i := range c.TollEntries {
			if c.TollEntries[i].ID == entryID {
				c.Tolls -= c.TollEntries[i].Amount
				c.TollEntries = append(c.TollEntries[:i], c.TollEntries[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: toll %s", ErrEntryNotFound, entryID)
	})
	if err != nil {
		return s, Effects{}, err
	}
	var fx Effects
	fx.toast("Toll entry removed", models.SeverityInfo)
	return next, fx, nil
}

// priceFuel fills in the price and total of a fuel entry. A missing price
// is the configured one; a missing total is liters times price.
func priceFuel(e *models.FuelEntry, settings models.Settings) {
	if e.PricePerLiter == 0 {
		e.PricePerLiter = settings.Costs.FuelPrice
	}
	if e.TotalCost == 0 {
		e.TotalCost = e.Liters * e.PricePerLiter
	}
	e.Liters = models.Round2(e.Liters)
	e.PricePerLiter = models.Round2(e.PricePerLiter)
	e.TotalCost = models.Round2(e.TotalCost)
}

func validFuel(e models.FuelEntry) error {
	if err := nonNegative("liters", e.Liters); err != nil {
		return err
	}
	if err := nonNegative("price per liter", e.PricePerLiter); err != nil {
		return err
	}
	return nonNegative("fuel cost", e.TotalCost)
}

// AddFuelEntry appends a refuelling to the vehicle's ledger.
func AddFuelEntry(s State, vehicleID string, e models.FuelEntry, env Env) (State, Effects, error) {
	if err := validFuel(e); err != nil {
		return s, Effects{}, err
	}
	if e.ID == "" {
		e.ID = env.id("fuel")
	}
	if e.Timestamp == "" {
		e.Timestamp = env.stamp()
	}

	next, err := withCosts(s, vehicleID, func(c *models.CostBreakdown, settings models.Settings) error {
		priceFuel(&e, settings)
		c.FuelEntries = append(c.FuelEntries, e)
		c.Fuel += e.TotalCost
		return nil
	})
	if err != nil {
		return s, Effects{}, err
	}
	var fx Effects
	fx.toast("Fuel entry added", models.SeveritySuccess)
	return next, fx, nil
}

// UpdateFuelEntry replaces a fuel entry. A missing price keeps the entry's
// own price. When liters or price change the total is recalculated from
// them; otherwise the given total stands.
func UpdateFuelEntry(s State, vehicleID, entryID string, e models.FuelEntry) (State, Effects, error) {
	if err := validFuel(e); err != nil {
		return s, Effects{}, err
	}
	e.ID = entryID

	next, err := withCosts(s, vehicleID, func(c *models.CostBreakdown, settings models.Settings) error {
		for i := range c.FuelEntries {
			old := c.FuelEntries[i]
			if old.ID != entryID {
				continue
			}
			if e.PricePerLiter == 0 {
				e.PricePerLiter = old.PricePerLiter
			}
			if e.Liters != old.Liters || e.PricePerLiter != old.PricePerLiter {
				e.TotalCost = 0
			}
			priceFuel(&e, settings)
			c.Fuel += e.TotalCost - old.TotalCost
			c.FuelEntries[i] = e
			return nil
		}
		return fmt.Errorf("%w: fuel %s", ErrEntryNotFound, entryID)
	})
	if err != nil {
		return s, Effects{}, err
	}
	var fx Effects
	fx.toast("Fuel entry updated", models.SeveritySuccess)
	return next, fx, nil
}

// RemoveFuelEntry drops a fuel entry and its cost.
func RemoveFuelEntry(s State, vehicleID, entryID string) (State, Effects, error) {
	next, err := withCosts(s, vehicleID, func(c *models.CostBreakdown, _ models.Settings) error {
		for i := range c.FuelEntries {
			if c.FuelEntries[i].ID == entryID {
				c.Fuel -= c.FuelEntries[i].TotalCost
				c.FuelEntries = append(c.FuelEntries[:i], c.FuelEntries[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: fuel %s", ErrEntryNotFound, entryID)
	})
	if err != nil {
		return s, Effects{}, err
	}
	var fx Effects
	fx.toast("Fuel entry removed", models.SeverityInfo)
	return next, fx, nil
}

func expenseComponent(c *models.CostBreakdown, cat models.ExpenseCategory) *float64 {
	switch cat {
	case models.ExpenseLabor:
		return &c.Labor
	case models.ExpenseMaintenance:
		return &c.Maintenance
	default:
		return &c.Miscellaneous
	}
}

// AddExpenseEntry books a labor, maintenance or other charge. Unknown
// categories count as other.
func AddExpenseEntry(s State, vehicleID string, e models.ExpenseEntry, env Env) (State, Effects, error) {
	if err := nonNegative("expense amount", e.Amount); err != nil {
		return s, Effects{}, err
	}
	switch e.Category {
	case models.ExpenseLabor, models.ExpenseMaintenance, models.ExpenseOther:
	default:
		e.Category = models.ExpenseOther
	}
	if e.ID == "" {
		e.ID = env.id("ex")
	}
	if e.Date == "" {
		e.Date = env.Now().Format("2006-01-02")
	}
	e.Amount = models.Round2(e.Amount)

	next, err := withCosts(s, vehicleID, func(c *models.CostBreakdown, _ models.Settings) error {
		c.ExpenseEntries = append(c.ExpenseEntries, e)
		*expenseComponent(c, e.Category) += e.Amount
		return nil
	})
	if err != nil {
		return s, Effects{}, err
	}
	var fx Effects
	fx.toast("Expense recorded", models.SeveritySuccess)
	return next, fx, nil
}

// RemoveExpenseEntry drops an expense and its amount.
func RemoveExpenseEntry(s State, vehicleID, entryID string) (State, Effects, error) {
	next, err := withCosts(s, vehicleID, func(c *models.CostBreakdown, _ models.Settings) error {
		for i := range c.ExpenseEntries {
			if e := c.ExpenseEntries[i]; e.ID == entryID {
				*expenseComponent(c, e.Category) -= e.Amount
				c.ExpenseEntries = append(c.ExpenseEntries[:i], c.ExpenseEntries[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: expense %s", ErrEntryNotFound, entryID)
	})
	if err != nil {
		return s, Effects{}, err
	}
	var fx Effects
	fx.toast("Expense removed", models.SeverityInfo)
	return next, fx, nil
}
