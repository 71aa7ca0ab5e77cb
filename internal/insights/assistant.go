// Package insights is the text-generation collaborator behind the
// dashboard's analysis features. Every use case has a deterministic offline
// answer, so callers never see an error from this package.
package insights

import (
	"context"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

// ReceiptKind selects what a scanned receipt is parsed into.
type ReceiptKind string

const (
	ReceiptFuel    ReceiptKind = "fuel"
	ReceiptExpense ReceiptKind = "expense"
)

// JobDetails describes a job awaiting a driver.
type JobDetails struct {
	ID          string             `json:"id"`
	Client      string             `json:"client,omitempty"`
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	VehicleType models.VehicleType `json:"vehicleType,omitempty"`
}

// DriverSuggestion is the structured answer of SuggestDriver.
type DriverSuggestion struct {
	RecommendedDriverID int    `json:"recommendedDriverId"`
	Reason              string `json:"reason"`
}

// Receipt is a parsed receipt. Fuel receipts fill Fuel, expense receipts
// fill Expense.
type Receipt struct {
	Kind       ReceiptKind          `json:"kind"`
	Fuel       *models.FuelEntry    `json:"fuel,omitempty"`
	Expense    *models.ExpenseEntry `json:"expense,omitempty"`
	Confidence float64              `json:"confidence"`
}

// Assistant answers the dashboard's analysis requests.
type Assistant interface {
	AnalyzeDelay(ctx context.Context, report string) string
	SummarizeCosts(ctx context.Context, v models.Vehicle) string
	SuggestDriver(ctx context.Context, job JobDetails, candidates []models.Driver) DriverSuggestion
	ParseReceipt(ctx context.Context, kind ReceiptKind, image []byte, mimeType string) Receipt
	Chat(ctx context.Context, message, dashboard string) string
	PredictMaintenance(ctx context.Context, vehicleName string, telemetry []models.TelemetryPoint) string
	FleetPerformance(ctx context.Context, m fleet.FleetMetrics) string
}
