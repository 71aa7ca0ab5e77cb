package models

import "math"

// TollProvider is the electronic toll collection account used at a plaza.
type TollProvider string

const (
	ProviderAutoSweep TollProvider = "AutoSweep"
	ProviderEasyTrip  TollProvider = "EasyTrip"
)

// ExpenseCategory routes an expense entry into a cost component.
type ExpenseCategory string

const (
	ExpenseLabor       ExpenseCategory = "Labor"
	ExpenseMaintenance ExpenseCategory = "Maintenance"
	ExpenseOther       ExpenseCategory = "Other"
)

// TollEntry is one toll plaza charge on a trip.
type TollEntry struct {
	ID        string       `json:"id" bson:"id"`
	Timestamp string       `json:"timestamp" bson:"timestamp"`
	Location  string       `json:"location" bson:"location"`
	Provider  TollProvider `json:"provider" bson:"provider"`
	Amount    float64      `json:"amount" bson:"amount"`
}

// FuelEntry is one refuelling on a trip.
type FuelEntry struct {
	ID            string  `json:"id" bson:"id"`
	Timestamp     string  `json:"timestamp" bson:"timestamp"`
	Station       string  `json:"station" bson:"station"`
	Liters        float64 `json:"liters" bson:"liters"`
	PricePerLiter float64 `json:"pricePerLiter" bson:"price_per_liter"`
	TotalCost     float64 `json:"totalCost" bson:"total_cost"`
	Odometer      float64 `json:"odometer" bson:"odometer"`
}

// ExpenseEntry is a labor, maintenance or miscellaneous charge on a trip.
type ExpenseEntry struct {
	ID          string          `json:"id" bson:"id"`
	Category    ExpenseCategory `json:"category" bson:"category"`
	Description string          `json:"description" bson:"description"`
	Amount      float64         `json:"amount" bson:"amount"`
	Date        string          `json:"date" bson:"date"`
}

// CostBreakdown is the running cost aggregate of a vehicle's current trip.
// Total is derived: it is recomputed from the five components on every mutation.
type CostBreakdown struct {
	Fuel           float64        `json:"fuel" bson:"fuel"`
	Tolls          float64        `json:"tolls" bson:"tolls"`
	Labor          float64        `json:"labor" bson:"labor"`
	Maintenance    float64        `json:"maintenance" bson:"maintenance"`
	Miscellaneous  float64        `json:"miscellaneous" bson:"miscellaneous"`
	Total          float64        `json:"total" bson:"total"`
	TollEntries    []TollEntry    `json:"tollEntries" bson:"toll_entries"`
	FuelEntries    []FuelEntry    `json:"fuelEntries" bson:"fuel_entries"`
	ExpenseEntries []ExpenseEntry `json:"expenseEntries,omitempty" bson:"expense_entries,omitempty"`
}

// Sum returns the sum of the five cost components.
func (c CostBreakdown) Sum() float64 {
	return c.Fuel + c.Tolls + c.Labor + c.Maintenance + c.Miscellaneous
}

// Recompute rounds every component and derives Total from them.
func (c *CostBreakdown) Recompute() {
	c.Fuel = Round2(c.Fuel)
	c.Tolls = Round2(c.Tolls)
	c.Labor = Round2(c.Labor)
	c.Maintenance = Round2(c.Maintenance)
	c.Miscellaneous = Round2(c.Miscellaneous)
	c.Total = Round2(c.Sum())
}

// Clone returns a deep copy of the aggregate and its ledgers. Toll and fuel
// ledgers stay non-nil so they serialize as [].
func (c CostBreakdown) Clone() CostBreakdown {
	out := c
	out.TollEntries = append(make([]TollEntry, 0, len(c.TollEntries)), c.TollEntries...)
	out.FuelEntries = append(make([]FuelEntry, 0, len(c.FuelEntries)), c.FuelEntries...)
	if c.ExpenseEntries != nil {
		out.ExpenseEntries = append(make([]ExpenseEntry, 0, len(c.ExpenseEntries)), c.ExpenseEntries...)
	}
	return out
}

// NewCostBreakdown returns a zeroed aggregate with empty ledgers.
func NewCostBreakdown() *CostBreakdown {
	return &CostBreakdown{
		TollEntries: []TollEntry{},
		FuelEntries: []FuelEntry{},
	}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
