// Package handlers exposes the fleet dashboard's intents over JSON HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dispatch/internal/auth"
	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/insights"
	"github.com/ukydev/fleet-dispatch/internal/middleware"
	"github.com/ukydev/fleet-dispatch/internal/models"
	"github.com/ukydev/fleet-dispatch/internal/simulator"
	"github.com/ukydev/fleet-dispatch/internal/store"
)

const maxBody = 8 << 20 // receipts carry images

// KeySetter re-keys the insights collaborator.
type KeySetter interface {
	SetAPIKey(ctx context.Context, key string) error
}

// Archiver writes a copy of the fleet when a session ends.
type Archiver interface {
	Archive(ctx context.Context, reason string) error
}

// Deps are the collaborators the API serves.
type Deps struct {
	Store     *store.Store
	Session   *simulator.Session
	Auth      *auth.Service
	Assistant insights.Assistant
	Keys      KeySetter // optional
	Archiver  Archiver  // optional
	Stream    http.Handler
	Env       fleet.Env

	DemoControls bool
	// AssistantRate limits collaborator calls per client per minute.
	AssistantRate int
	// SessionContext parents the tick loop started at login.
	SessionContext context.Context
}

// API holds the handler set.
type API struct {
	Deps
	authMW *middleware.AuthMiddleware
	rateMW *middleware.RateLimitMiddleware
}

// New creates the API.
func New(d Deps) *API {
	if d.AssistantRate <= 0 {
		d.AssistantRate = 30
	}
	if d.SessionContext == nil {
		d.SessionContext = context.Background()
	}
	return &API{
		Deps:   d,
		authMW: middleware.NewAuthMiddleware(d.Auth),
		rateMW: middleware.NewRateLimitMiddleware(),
	}
}

// Routes returns the full handler with authentication applied.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()
	limited := a.rateMW.RateLimit(a.AssistantRate, 60)

	mux.HandleFunc("GET /health", a.Health)

	mux.HandleFunc("POST /api/auth/login", a.Login)
	mux.HandleFunc("POST /api/auth/logout", a.Logout)
	mux.HandleFunc("GET /api/session", a.SessionInfo)

	mux.HandleFunc("GET /api/vehicles", a.ListVehicles)
	mux.HandleFunc("POST /api/vehicles", a.SaveVehicle)
	mux.HandleFunc("PUT /api/vehicles/{id}", a.EditVehicle)
	mux.HandleFunc("DELETE /api/vehicles/{id}", a.DeleteVehicle)
	mux.HandleFunc("POST /api/vehicles/{id}/complete", a.CompleteTrip)
	mux.HandleFunc("POST /api/vehicles/{id}/dock", a.UpdateDock)
	mux.HandleFunc("POST /api/vehicles/{id}/dock/advance", a.AdvanceDock)

	mux.HandleFunc("POST /api/vehicles/{id}/tolls", a.AddToll)
	mux.HandleFunc("PUT /api/vehicles/{id}/tolls/{entryId}", a.UpdateToll)
	mux.HandleFunc("DELETE /api/vehicles/{id}/tolls/{entryId}", a.RemoveToll)
	mux.HandleFunc("POST /api/vehicles/{id}/fuel", a.AddFuel)
	mux.HandleFunc("PUT /api/vehicles/{id}/fuel/{entryId}", a.UpdateFuel)
	mux.HandleFunc("DELETE /api/vehicles/{id}/fuel/{entryId}", a.RemoveFuel)
	mux.HandleFunc("POST /api/vehicles/{id}/expenses", a.AddExpense)
	mux.HandleFunc("DELETE /api/vehicles/{id}/expenses/{entryId}", a.RemoveExpense)
	mux.Handle("POST /api/vehicles/{id}/receipts", limited(http.HandlerFunc(a.ParseReceipt)))

	mux.HandleFunc("POST /api/jobs", a.CreateJob)

	mux.HandleFunc("GET /api/drivers", a.ListDrivers)
	mux.HandleFunc("POST /api/drivers", a.SaveDriver)
	mux.HandleFunc("PUT /api/drivers/{id}", a.SaveDriver)
	mux.HandleFunc("DELETE /api/drivers/{id}", a.DeleteDriver)
	mux.HandleFunc("POST /api/drivers/{id}/events/{kind}", a.DriverEvent)

	mux.HandleFunc("GET /api/notifications", a.ListNotifications)
	mux.HandleFunc("POST /api/notifications/read", a.MarkAllRead)
	mux.HandleFunc("GET /api/toasts", a.ListToasts)
	mux.HandleFunc("DELETE /api/toasts/{id}", a.DismissToast)

	mux.HandleFunc("GET /api/settings", a.GetSettings)
	mux.HandleFunc("PUT /api/settings/{section}", a.UpdateSettings)

	mux.HandleFunc("GET /api/search", a.Search)
	mux.HandleFunc("GET /api/metrics", a.Metrics)
	mux.HandleFunc("GET /api/reports/costs.csv", a.CostsCSV)

	mux.Handle("POST /api/insights/delay", limited(http.HandlerFunc(a.AnalyzeDelay)))
	mux.Handle("POST /api/insights/costs/{id}", limited(http.HandlerFunc(a.SummarizeCosts)))
	mux.Handle("POST /api/insights/assign", limited(http.HandlerFunc(a.SuggestDriver)))
	mux.Handle("POST /api/insights/chat", limited(http.HandlerFunc(a.Chat)))
	mux.Handle("POST /api/insights/maintenance/{id}", limited(http.HandlerFunc(a.PredictMaintenance)))
	mux.Handle("POST /api/insights/performance", limited(http.HandlerFunc(a.FleetPerformance)))

	if a.DemoControls {
		mux.HandleFunc("POST /api/demo/{trigger}", a.Demo)
	}
	if a.Stream != nil {
		mux.Handle("GET /api/stream", a.Stream)
	}

	return middleware.RequestLogger(a.authMW.Authenticate(a.authMW.RequireMutate(mux)))
}

// Health reports liveness.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"session_active": a.Session.Active(),
		"time":           time.Now().Format(time.RFC3339),
	})
}

// actionResponse reports the outcome of one reducer.
type actionResponse struct {
	Declined bool               `json:"declined,omitempty"`
	Toasts   []fleet.ToastDraft `json:"toasts,omitempty"`
	Vehicle  *models.Vehicle    `json:"vehicle,omitempty"`
	Driver   *models.Driver     `json:"driver,omitempty"`
}

// apply runs reducer through the store and writes the outcome. A declined
// confirmation is not an error: it answers 200 with declined set.
func (a *API) apply(w http.ResponseWriter, action string, reducer fleet.Reducer) (fleet.Effects, bool) {
	fx, err := a.Store.Apply(action, reducer)
	if err != nil {
		writeError(w, err)
		return fx, false
	}
	return fx, true
}

func (a *API) respond(w http.ResponseWriter, fx fleet.Effects, vehicleID string, driverID int) {
	resp := actionResponse{Declined: fx.Aborted, Toasts: fx.Toasts}
	state := a.Store.Snapshot()
	if v, ok := state.Vehicle(vehicleID); ok && vehicleID != "" {
		resp.Vehicle = &v
	}
	if d, ok := state.Driver(driverID); ok && driverID != 0 {
		resp.Driver = &d
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

var errBadJSON = errors.New("invalid JSON body")

func statusFor(err error) int {
	switch {
	case errors.Is(err, fleet.ErrVehicleNotFound), errors.Is(err, fleet.ErrDriverNotFound), errors.Is(err, fleet.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, fleet.ErrInvalidInput), errors.Is(err, errBadJSON):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrRejected):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrRevokedToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		return errBadJSON
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errBadJSON
	}
	return nil
}
