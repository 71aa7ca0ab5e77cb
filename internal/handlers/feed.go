package handlers

import (
	"context"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

// APIKeyMask replaces a configured collaborator key in responses. Sending it
// back keeps the stored key.
const APIKeyMask = "********"

type notificationsResponse struct {
	Unread        int                   `json:"unread"`
	Notifications []models.Notification `json:"notifications"`
}

// ListNotifications returns the feed, newest first.
func (a *API) ListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, notificationsResponse{
		Unread:        a.Store.UnreadCount(),
		Notifications: a.Store.Notifications(),
	})
}

// MarkAllRead clears the unread badge.
func (a *API) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	a.Store.MarkAllRead()
	w.WriteHeader(http.StatusNoContent)
}

// ListToasts returns the live toasts, oldest first.
func (a *API) ListToasts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.Toasts())
}

// DismissToast closes one toast early.
func (a *API) DismissToast(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "toast id must be an integer")
		return
	}
	if !a.Store.DismissToast(id) {
		writeMessage(w, http.StatusNotFound, "toast not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func maskSettings(s models.Settings) models.Settings {
	if s.Costs.APIKey != "" {
		s.Costs.APIKey = APIKeyMask
	}
	return s
}

// GetSettings returns the settings with the collaborator key masked.
func (a *API) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, maskSettings(a.Store.Settings()))
}

// UpdateSettings replaces one settings section: general, costs or
// notifications.
func (a *API) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var reducer fleet.Reducer
	switch r.PathValue("section") {
	case "general":
		var g models.GeneralSettings
		if err := decode(w, r, &g); err != nil {
			writeError(w, err)
			return
		}
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) { return fleet.UpdateGeneral(s, g) }
	case "costs":
		var c models.CostSettings
		if err := decode(w, r, &c); err != nil {
			writeError(w, err)
			return
		}
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) {
			if c.APIKey == APIKeyMask {
				c.APIKey = s.Settings.Costs.APIKey
			}
			return fleet.UpdateCosts(s, c)
		}
	case "notifications":
		var p models.NotificationPrefs
		if err := decode(w, r, &p); err != nil {
			writeError(w, err)
			return
		}
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) { return fleet.UpdateNotificationPrefs(s, p) }
	default:
		writeMessage(w, http.StatusNotFound, "unknown settings section")
		return
	}

	fx, ok := a.apply(w, "update_settings", reducer)
	if !ok {
		return
	}
	a.rekey(r.Context())
	writeJSON(w, http.StatusOK, struct {
		Settings models.Settings   `json:"settings"`
		Toasts   []fleet.ToastDraft `json:"toasts,omitempty"`
	}{maskSettings(a.Store.Settings()), fx.Toasts})
}

// ApplySettings replaces every section at once, as when the settings file
// changes on disk.
func (a *API) ApplySettings(ctx context.Context, next models.Settings) error {
	_, err := a.Store.Apply("reload_settings", func(s fleet.State) (fleet.State, fleet.Effects, error) {
		var fx fleet.Effects
		for _, step := range []fleet.Reducer{
			func(s fleet.State) (fleet.State, fleet.Effects, error) { return fleet.UpdateGeneral(s, next.General) },
			func(s fleet.State) (fleet.State, fleet.Effects, error) { return fleet.UpdateCosts(s, next.Costs) },
			func(s fleet.State) (fleet.State, fleet.Effects, error) {
				return fleet.UpdateNotificationPrefs(s, next.Notifications)
			},
		} {
			var stepFx fleet.Effects
			var err error
			if s, stepFx, err = step(s); err != nil {
				return s, fleet.Effects{}, err
			}
			// One toast for the whole reload is enough.
			if len(fx.Toasts) == 0 {
				fx.Merge(stepFx)
			}
		}
		return s, fx, nil
	})
	if err != nil {
		return err
	}
	a.rekey(ctx)
	return nil
}

func (a *API) rekey(ctx context.Context) {
	if a.Keys == nil {
		return
	}
	if err := a.Keys.SetAPIKey(ctx, a.Store.Settings().Costs.APIKey); err != nil {
		log.WithError(err).Warn("Collaborator key rejected, running offline")
	}
}

// Search finds the first vehicle or driver matching ?q=.
func (a *API) Search(w http.ResponseWriter, r *http.Request) {
	result, fx := fleet.Search(a.Store.Snapshot(), r.URL.Query().Get("q"))
	a.Store.Emit("search", fx)
	writeJSON(w, http.StatusOK, struct {
		fleet.SearchResult
		Toasts []fleet.ToastDraft `json:"toasts,omitempty"`
	}{result, fx.Toasts})
}

// Metrics returns the reports summary.
func (a *API) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fleet.Metrics(a.Store.Snapshot()))
}

// CostsCSV streams the per-vehicle cost report.
func (a *API) CostsCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="fleet-costs.csv"`)
	if err := fleet.WriteCostsCSV(w, a.Store.Snapshot()); err != nil {
		log.WithError(err).Error("Failed to write cost report")
	}
}
