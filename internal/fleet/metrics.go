package fleet

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// CostTotals sums the cost components across the fleet.
type CostTotals struct {
	Fuel          float64 `json:"fuel"`
	Labor         float64 `json:"labor"`
	Maintenance   float64 `json:"maintenance"`
	Tolls         float64 `json:"tolls"`
	Miscellaneous float64 `json:"miscellaneous"`
}

// FleetMetrics is the reports view summary and the input of the fleet
// performance narrative.
type FleetMetrics struct {
	TotalCost      float64                      `json:"totalCost"`
	Breakdown      CostTotals                   `json:"breakdown"`
	ActiveVehicles int                          `json:"activeVehicles"`
	ByStatus       map[models.VehicleStatus]int `json:"byStatus"`
	TopDriver      string                       `json:"topDriver,omitempty"`
	DriversByRank  []models.Driver              `json:"driversByRating"`
}

// Metrics computes the reports summary. TotalCost follows the reports view
// and leaves miscellaneous out.
func Metrics(s State) FleetMetrics {
	m := FleetMetrics{ByStatus: make(map[models.VehicleStatus]int)}
	for _, v := range s.Vehicles {
		m.ByStatus[v.Status]++
		if v.Status == models.StatusInTransit {
			m.ActiveVehicles++
		}
		if c := v.Costs; c != nil {
			m.Breakdown.Fuel += c.Fuel
			m.Breakdown.Labor += c.Labor
			m.Breakdown.Maintenance += c.Maintenance
			m.Breakdown.Tolls += c.Tolls
			m.Breakdown.Miscellaneous += c.Miscellaneous
		}
	}
	b := &m.Breakdown
	b.Fuel, b.Labor, b.Maintenance = models.Round2(b.Fuel), models.Round2(b.Labor), models.Round2(b.Maintenance)
	b.Tolls, b.Miscellaneous = models.Round2(b.Tolls), models.Round2(b.Miscellaneous)
	m.TotalCost = models.Round2(b.Fuel + b.Labor + b.Maintenance + b.Tolls)

	m.DriversByRank = append([]models.Driver(nil), s.Drivers...)
	sort.SliceStable(m.DriversByRank, func(i, j int) bool {
		return m.DriversByRank[i].Rating > m.DriversByRank[j].Rating
	})
	if len(m.DriversByRank) > 0 {
		m.TopDriver = m.DriversByRank[0].Name
	}
	return m
}

// WriteCostsCSV exports one row per vehicle with its trip costs.
func WriteCostsCSV(w io.Writer, s State) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Vehicle ID", "Driver", "Status", "Fuel Cost", "Toll Cost", "Maint Cost", "Labor Cost", "Total Trip Cost"}); err != nil {
		return err
	}
	for _, v := range s.Vehicles {
		var c models.CostBreakdown
		if v.Costs != nil {
			c = *v.Costs
		}
		row := []string{
			v.Name, v.Driver, string(v.Status),
			money(c.Fuel), money(c.Tolls), money(c.Maintenance), money(c.Labor), money(c.Total),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
