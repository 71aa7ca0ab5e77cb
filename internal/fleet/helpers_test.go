package fleet

import (
	"fmt"
	"time"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// fixedRand returns the same draw every time.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(n int) int   { return r.n % n }

func testEnv() Env {
	n := 0
	return Env{
		Rand: fixedRand{f: 0, n: 234},
		NewID: func() string {
			n++
			return fmt.Sprintf("%04d", n)
		},
		Now: func() time.Time { return time.Date(2026, 3, 9, 9, 30, 0, 0, time.UTC) },
	}
}

func oneVehicle(status models.VehicleStatus, progress float64) State {
	return State{
		Vehicles: []models.Vehicle{{
			ID: "v1", Name: "RVL-0001", Type: models.TypeClosedVan6W, Status: status,
			Progress: progress, FuelLevel: 100, Driver: "K. Yap", Costs: models.NewCostBreakdown(),
		}},
		Settings: models.DefaultSettings(),
	}
}
