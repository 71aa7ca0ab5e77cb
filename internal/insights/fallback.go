package insights

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

// Canned answers used while offline.
var delayReasons = []string{
	"Heavy congestion detected on SLEX near Alabang Viaduct due to ongoing roadworks.",
	"Unexpected weather conditions causing reduced visibility and slower average fleet speed.",
	"Driver took a mandatory rest stop to comply with safety regulations.",
	"Minor mechanical anomaly reported in tire pressure monitoring system, requiring safety check.",
}

const (
	costSummaryText = "Efficiency Rating: High. Fuel consumption is 5% below fleet average for this route. " +
		"Toll costs are within budget. Suggest maintaining current route for future trips."

	chatOfflineText = "I'm currently running in Demo Mode (Offline). I can help you navigate the dashboard, " +
		"but I can't process complex live data queries right now."

	chatErrorText = "Sorry, I encountered an error connecting to the knowledge base."
	chatEmptyText = "I couldn't process that request."

	maintenanceText = "Analysis Complete: Slight vibration detected in rear axle (Sensor ID: AX-99). " +
		"Recommend inspection within 500km."

	maintenanceErrorText = "Unable to process telematics data."
	maintenanceEmptyText = "No issues detected."

	performanceText = "Executive Summary: Fleet utilization is up 12% week-over-week. Fuel costs have stabilized, " +
		"though maintenance expenses are trending slightly higher due to aging units in the North sector. " +
		"Recommendation: Rotate drivers on the SLEX route to balance fatigue levels."

	performanceErrorText = "Unable to generate report."
	performanceEmptyText = "Report generation failed."
)

var cannedDrivers = []DriverSuggestion{
	{RecommendedDriverID: 1, Reason: "Best performance rating (4.9) and closest to pickup."},
	{RecommendedDriverID: 6, Reason: "Vehicle type match and high HOS availability."},
}

// Fallback answers every request locally. Equal inputs give equal answers.
type Fallback struct {
	Now func() time.Time
}

func hashOf(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func (f Fallback) AnalyzeDelay(_ context.Context, report string) string {
	return delayReasons[hashOf(report)%uint32(len(delayReasons))]
}

func (f Fallback) SummarizeCosts(context.Context, models.Vehicle) string {
	return costSummaryText
}

// SuggestDriver picks the best-rated available candidate. With no such
// candidate it returns one of two canned picks keyed by the job id.
func (f Fallback) SuggestDriver(_ context.Context, job JobDetails, candidates []models.Driver) DriverSuggestion {
	avail := make([]models.Driver, 0, len(candidates))
	for _, d := range candidates {
		if d.Status == models.DriverAvailable {
			avail = append(avail, d)
		}
	}
	if len(avail) == 0 {
		return cannedDrivers[hashOf(job.ID)%2]
	}
	sort.SliceStable(avail, func(i, j int) bool {
		if avail[i].Rating != avail[j].Rating {
			return avail[i].Rating > avail[j].Rating
		}
		return avail[i].Trips > avail[j].Trips
	})
	best := avail[0]
	return DriverSuggestion{
		RecommendedDriverID: best.ID,
		Reason:              fmt.Sprintf("Best performance rating (%.1f) among available drivers with %d completed trips.", best.Rating, best.Trips),
	}
}

func (f Fallback) ParseReceipt(_ context.Context, kind ReceiptKind, _ []byte, _ string) Receipt {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	stamp := now().Format("03:04 PM")
	if kind == ReceiptExpense {
		return Receipt{
			Kind: ReceiptExpense,
			Expense: &models.ExpenseEntry{
				Category:    models.ExpenseMaintenance,
				Description: "Coolant Top-up & Wiper Blade",
				Amount:      850.00,
				Date:        stamp,
			},
			Confidence: 0.95,
		}
	}
	return Receipt{
		Kind: ReceiptFuel,
		Fuel: &models.FuelEntry{
			Timestamp:     stamp,
			Station:       "Shell SLEX Southbound",
			Liters:        45.5,
			PricePerLiter: 68.50,
			TotalCost:     3116.75,
		},
		Confidence: 0.98,
	}
}

func (f Fallback) Chat(context.Context, string, string) string {
	return chatOfflineText
}

func (f Fallback) PredictMaintenance(context.Context, string, []models.TelemetryPoint) string {
	return maintenanceText
}

func (f Fallback) FleetPerformance(context.Context, fleet.FleetMetrics) string {
	return performanceText
}

var _ Assistant = Fallback{}
