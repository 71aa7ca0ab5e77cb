package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/insights"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

type textResponse struct {
	Text   string `json:"text"`
	Online bool   `json:"online"`
}

func (a *API) online() bool {
	o, ok := a.Assistant.(interface{ Online() bool })
	return ok && o.Online()
}

func (a *API) vehicle(w http.ResponseWriter, r *http.Request) (models.Vehicle, bool) {
	v, ok := a.Store.Snapshot().Vehicle(r.PathValue("id"))
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", fleet.ErrVehicleNotFound, r.PathValue("id")))
	}
	return v, ok
}

type delayRequest struct {
	VehicleID string `json:"vehicleId"`
	Report    string `json:"report"`
}

// delayReport describes a delayed vehicle for the collaborator.
func delayReport(v models.Vehicle, extra string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vehicle: %s (%s)\n", v.Name, v.Type)
	fmt.Fprintf(&b, "Route: %s to %s\n", v.Origin, v.Destination)
	fmt.Fprintf(&b, "Current Progress: %.0f%%\n", v.Progress)
	fmt.Fprintf(&b, "ETA: %s\n", v.ETA)
	fmt.Fprintf(&b, "Status: %s\n", strings.ToUpper(string(v.Status)))
	if extra != "" {
		fmt.Fprintf(&b, "Field report: %s\n", extra)
	}
	return b.String()
}

// AnalyzeDelay explains a delay, from a vehicle, a free-text report or both.
func (a *API) AnalyzeDelay(w http.ResponseWriter, r *http.Request) {
	var req delayRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	report := strings.TrimSpace(req.Report)
	if req.VehicleID != "" {
		v, ok := a.Store.Snapshot().Vehicle(req.VehicleID)
		if !ok {
			writeError(w, fmt.Errorf("%w: %s", fleet.ErrVehicleNotFound, req.VehicleID))
			return
		}
		report = delayReport(v, report)
	}
	if report == "" {
		writeMessage(w, http.StatusBadRequest, "vehicleId or report is required")
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: a.Assistant.AnalyzeDelay(r.Context(), report), Online: a.online()})
}

// SummarizeCosts narrates one vehicle's trip costs.
func (a *API) SummarizeCosts(w http.ResponseWriter, r *http.Request) {
	v, ok := a.vehicle(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: a.Assistant.SummarizeCosts(r.Context(), v), Online: a.online()})
}

// SuggestDriver recommends one of the available drivers for a job.
func (a *API) SuggestDriver(w http.ResponseWriter, r *http.Request) {
	var job insights.JobDetails
	if err := decode(w, r, &job); err != nil {
		writeError(w, err)
		return
	}
	var candidates []models.Driver
	for _, d := range a.Store.Snapshot().Drivers {
		if d.Status == models.DriverAvailable {
			candidates = append(candidates, d)
		}
	}
	writeJSON(w, http.StatusOK, a.Assistant.SuggestDriver(r.Context(), job, candidates))
}

type chatRequest struct {
	Message string `json:"message"`
}

// dashboardContext summarizes the live fleet for the support chat.
func dashboardContext(s fleet.State) string {
	m := fleet.Metrics(s)
	return fmt.Sprintf("The user is using the %s Fleet Command dashboard. "+
		"Capabilities: tracking vehicles, managing drivers, logging maintenance, dispatching jobs, viewing cost reports. "+
		"Current operational status: %d vehicles, %d active, %d delayed, trip costs to date ₱%.2f.",
		s.Settings.General.CompanyName, len(s.Vehicles), m.ActiveVehicles, m.ByStatus[models.StatusDelayed], m.TotalCost)
}

// Chat answers a support question with the live fleet as context.
func (a *API) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeMessage(w, http.StatusBadRequest, "message is required")
		return
	}
	reply := a.Assistant.Chat(r.Context(), req.Message, dashboardContext(a.Store.Snapshot()))
	writeJSON(w, http.StatusOK, textResponse{Text: reply, Online: a.online()})
}

type maintenanceRequest struct {
	Telemetry []models.TelemetryPoint `json:"telemetry"`
}

// PredictMaintenance reads a telemetry trace. Without one it uses the
// sample day trace.
func (a *API) PredictMaintenance(w http.ResponseWriter, r *http.Request) {
	v, ok := a.vehicle(w, r)
	if !ok {
		return
	}
	var req maintenanceRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Telemetry) == 0 {
		req.Telemetry = fleet.SampleTelemetry()
	}
	text := a.Assistant.PredictMaintenance(r.Context(), v.Name, req.Telemetry)
	writeJSON(w, http.StatusOK, textResponse{Text: text, Online: a.online()})
}

// FleetPerformance narrates the reports summary.
func (a *API) FleetPerformance(w http.ResponseWriter, r *http.Request) {
	m := fleet.Metrics(a.Store.Snapshot())
	writeJSON(w, http.StatusOK, textResponse{Text: a.Assistant.FleetPerformance(r.Context(), m), Online: a.online()})
}

// ParseReceipt reads a receipt image sent as the raw body. The parsed
// entry is returned for review; nothing is added to the ledger.
func (a *API) ParseReceipt(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.vehicle(w, r); !ok {
		return
	}
	kind := insights.ReceiptKind(r.URL.Query().Get("type"))
	if kind == "" {
		kind = insights.ReceiptFuel
	}
	if kind != insights.ReceiptFuel && kind != insights.ReceiptExpense {
		writeMessage(w, http.StatusBadRequest, "type must be fuel or expense")
		return
	}
	image, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeMessage(w, http.StatusRequestEntityTooLarge, "receipt image too large")
		return
	}
	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" && len(image) > 0 {
		mimeType = http.DetectContentType(image)
	}
	writeJSON(w, http.StatusOK, a.Assistant.ParseReceipt(r.Context(), kind, image, mimeType))
}

// Demo runs one of the demo triggers.
func (a *API) Demo(w http.ResponseWriter, r *http.Request) {
	var reducer fleet.Reducer
	trigger := r.PathValue("trigger")
	switch trigger {
	case "delay":
		reducer = fleet.TriggerDelay
	case "fuel":
		reducer = fleet.TriggerFuelSpike
	case "maintenance":
		reducer = fleet.TriggerMaintenance
	default:
		writeMessage(w, http.StatusNotFound, "unknown demo trigger")
		return
	}
	if fx, ok := a.apply(w, "demo_"+trigger, reducer); ok {
		a.respond(w, fx, "", 0)
	}
}
