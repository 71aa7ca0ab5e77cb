package fleet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

func assertTotalMatches(t *testing.T, s State) {
	t.Helper()
	for _, v := range s.Vehicles {
		if v.Costs == nil {
			continue
		}
		assert.InDelta(t, v.Costs.Sum(), v.Costs.Total, 0.01, v.ID)
	}
}

func TestTollLedger(t *testing.T) {
	env := testEnv()
	s := Seed()

	s, fx, err := AddTollEntry(s, "1", models.TollEntry{Location: "SLEX Calamba", Amount: 120.5}, env)
	require.NoError(t, err)
	assert.Equal(t, "Toll entry added", fx.Toasts[0].Message)
	v, _ := s.Vehicle("1")
	require.Len(t, v.Costs.TollEntries, 3)
	added := v.Costs.TollEntries[2]
	assert.Equal(t, "toll-0001", added.ID)
	assert.Equal(t, "09:30 AM", added.Timestamp)
	assert.Equal(t, models.ProviderAutoSweep, added.Provider)
	assert.Equal(t, 960.5, v.Costs.Tolls)
	assert.Equal(t, 8360.5, v.Costs.Total)

	s, _, err = UpdateTollEntry(s, "1", "t2", models.TollEntry{Location: "STAR Tollway Lipa", Provider: models.ProviderAutoSweep, Amount: 300})
	require.NoError(t, err)
	v, _ = s.Vehicle("1")
	assert.Equal(t, 920.5, v.Costs.Tolls)

	s, _, err = RemoveTollEntry(s, "1", "toll-0001")
	require.NoError(t, err)
	v, _ = s.Vehicle("1")
	assert.Equal(t, 800.0, v.Costs.Tolls)
	assert.Equal(t, 8200.0, v.Costs.Total)
	assertTotalMatches(t, s)

	_, _, err = RemoveTollEntry(s, "1", "toll-0001")
	assert.ErrorIs(t, err, ErrEntryNotFound)
	_, _, err = AddTollEntry(s, "1", models.TollEntry{Amount: -1}, env)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = AddTollEntry(s, "zz", models.TollEntry{Amount: 1}, env)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestFuelLedger(t *testing.T) {
	env := testEnv()
	s := Seed()

	s, _, err := AddFuelEntry(s, "3", models.FuelEntry{Station: "Petron Kawit", Liters: 40}, env)
	require.NoError(t, err)
	v, _ := s.Vehicle("3")
	e := v.Costs.FuelEntries[0]
	assert.Equal(t, 68.5, e.PricePerLiter, "defaults to configured price")
	assert.Equal(t, 2740.0, e.TotalCost)
	assert.Equal(t, 4240.0, v.Costs.Fuel)

	e.Liters = 50
	s, _, err = UpdateFuelEntry(s, "3", e.ID, e)
	require.NoError(t, err)
	v, _ = s.Vehicle("3")
	assert.Equal(t, 3425.0, v.Costs.FuelEntries[0].TotalCost, "liters change recalculates total")
	assert.Equal(t, 4925.0, v.Costs.Fuel)

	e = v.Costs.FuelEntries[0]
	e.TotalCost = 3400
	s, _, err = UpdateFuelEntry(s, "3", e.ID, e)
	require.NoError(t, err)
	v, _ = s.Vehicle("3")
	assert.Equal(t, 3400.0, v.Costs.FuelEntries[0].TotalCost, "explicit total stands")
	assert.Equal(t, 4900.0, v.Costs.Fuel)

	s, _, err = RemoveFuelEntry(s, "3", e.ID)
	require.NoError(t, err)
	v, _ = s.Vehicle("3")
	assert.Equal(t, 1500.0, v.Costs.Fuel)
	assert.Equal(t, 3484.0, v.Costs.Total)
}

func TestUpdateFuelEntry_MissingPriceKeepsEntryPrice(t *testing.T) {
	env := testEnv()
	s, _, err := AddFuelEntry(Seed(), "3", models.FuelEntry{Station: "Petron", Liters: 20, PricePerLiter: 70}, env)
	require.NoError(t, err)
	v, _ := s.Vehicle("3")
	e := v.Costs.FuelEntries[len(v.Costs.FuelEntries)-1]
	fuel := v.Costs.Fuel

	s.Settings.Costs.FuelPrice = 80
	s, _, err = UpdateFuelEntry(s, "3", e.ID, models.FuelEntry{Station: "Petron Bay", Liters: 20, TotalCost: e.TotalCost})
	require.NoError(t, err)
	v, _ = s.Vehicle("3")
	got := v.Costs.FuelEntries[len(v.Costs.FuelEntries)-1]
	assert.Equal(t, 70.0, got.PricePerLiter)
	assert.Equal(t, 1400.0, got.TotalCost)
	assert.Equal(t, "Petron Bay", got.Station)
	assert.Equal(t, fuel, v.Costs.Fuel)

	s, _, err = UpdateFuelEntry(s, "3", e.ID, models.FuelEntry{Station: "Petron Bay", Liters: 10})
	require.NoError(t, err)
	v, _ = s.Vehicle("3")
	got = v.Costs.FuelEntries[len(v.Costs.FuelEntries)-1]
	assert.Equal(t, 700.0, got.TotalCost, "liters change reprices at the entry's price")
	assert.InDelta(t, fuel-700, v.Costs.Fuel, 0.001)
}

func TestFuelLedger_CreatesAggregate(t *testing.T) {
	s, _, err := AddFuelEntry(Seed(), "7", models.FuelEntry{Liters: 10, PricePerLiter: 70}, testEnv())
	require.NoError(t, err)
	v, _ := s.Vehicle("7")
	require.NotNil(t, v.Costs)
	assert.Equal(t, 700.0, v.Costs.Total)
}

func TestExpenseLedger(t *testing.T) {
	env := testEnv()
	s := Seed()

	s, _, err := AddExpenseEntry(s, "4", models.ExpenseEntry{Category: models.ExpenseLabor, Description: "Helper", Amount: 400}, env)
	require.NoError(t, err)
	s, _, err = AddExpenseEntry(s, "4", models.ExpenseEntry{Category: models.ExpenseMaintenance, Description: "Coolant", Amount: 850}, env)
	require.NoError(t, err)
	s, _, err = AddExpenseEntry(s, "4", models.ExpenseEntry{Category: "Parking", Amount: 60}, env)
	require.NoError(t, err)

	v, _ := s.Vehicle("4")
	assert.Equal(t, 2200.0, v.Costs.Labor)
	assert.Equal(t, 1000.0, v.Costs.Maintenance)
	assert.Equal(t, 110.0, v.Costs.Miscellaneous)
	assert.Equal(t, models.ExpenseOther, v.Costs.ExpenseEntries[2].Category)
	assert.Equal(t, "2026-03-09", v.Costs.ExpenseEntries[0].Date)
	assert.Equal(t, 6560.0, v.Costs.Total)

	s, _, err = RemoveExpenseEntry(s, "4", v.Costs.ExpenseEntries[1].ID)
	require.NoError(t, err)
	v, _ = s.Vehicle("4")
	assert.Equal(t, 150.0, v.Costs.Maintenance)
	assert.Equal(t, 5710.0, v.Costs.Total)
}

func TestLedger_TotalInvariantUnderRandomEdits(t *testing.T) {
	env := NewEnv(NewRandom(11))
	rnd := NewRandom(12)
	s := Seed()
	var err error

	amount := func() float64 { return math.Round(rnd.Float64()*100000) / 100 }
	for i := 0; i < 300; i++ {
		id := s.Vehicles[rnd.Intn(len(s.Vehicles))].ID
		switch rnd.Intn(6) {
		case 0:
			s, _, err = AddTollEntry(s, id, models.TollEntry{Amount: amount()}, env)
		case 1:
			s, _, err = AddFuelEntry(s, id, models.FuelEntry{Liters: amount() / 10, PricePerLiter: 60 + rnd.Float64()*10}, env)
		case 2:
			s, _, err = AddExpenseEntry(s, id, models.ExpenseEntry{Category: models.ExpenseLabor, Amount: amount()}, env)
		case 3:
			if v, _ := s.Vehicle(id); v.Costs != nil && len(v.Costs.TollEntries) > 0 {
				e := v.Costs.TollEntries[0]
				e.Amount = amount()
				s, _, err = UpdateTollEntry(s, id, e.ID, e)
			}
		case 4:
			if v, _ := s.Vehicle(id); v.Costs != nil && len(v.Costs.FuelEntries) > 0 {
				s, _, err = RemoveFuelEntry(s, id, v.Costs.FuelEntries[0].ID)
			}
		case 5:
			s, _ = Tick(s, rnd)
		}
		require.NoError(t, err)
		require.NoError(t, CheckInvariants(s))
		assertTotalMatches(t, s)
	}
}
