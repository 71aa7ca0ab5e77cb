package models

// Maintenance record states.
const (
	MaintenanceCompleted = "Completed"
	MaintenanceScheduled = "Scheduled"
	MaintenancePending   = "Pending"
)

// MaintenanceRecord represents one service visit in a vehicle's history.
type MaintenanceRecord struct {
	ID       string  `json:"id" bson:"id"`
	Date     string  `json:"date" bson:"date"`
	Service  string  `json:"service" bson:"service"`
	Mechanic string  `json:"mechanic" bson:"mechanic"`
	Cost     float64 `json:"cost" bson:"cost"`
	Odometer float64 `json:"odometer" bson:"odometer"`
	Notes    string  `json:"notes" bson:"notes"`
	Status   string  `json:"status" bson:"status"` // "Completed", "Scheduled", "Pending"
}

// TelemetryPoint is one sample fed to the maintenance predictor.
type TelemetryPoint struct {
	Time        string  `json:"time"`
	Speed       float64 `json:"speed"`       // km/h
	Consumption float64 `json:"consumption"` // km/L
}
