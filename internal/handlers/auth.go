package handlers

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

const archiveTimeout = 10 * time.Second

// Login checks the operator's credentials and starts the session. The
// session runs until logout or until the newest token expires.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	resp, err := a.Auth.Login(req)
	if err != nil {
		log.WithField("username", req.Username).Warn("Login failed")
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if a.Session.Start(a.SessionContext) {
		log.WithField("username", resp.Operator.Username).Info("Session started")
	}
	a.Session.ExtendUntil(resp.ExpiresAt)
	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes the token and ends the session. The fleet is archived
// when an archive is configured.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := a.Auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := a.Auth.Revoke(token); err != nil {
		writeError(w, err)
		return
	}

	wasActive := a.Session.Active()
	a.Session.Stop()
	if wasActive && a.Archiver != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), archiveTimeout)
		defer cancel()
		// Archive failures are logged by the archiver; logout still succeeds.
		_ = a.Archiver.Archive(ctx, "logout")
	}
	log.Info("Session ended")
	w.WriteHeader(http.StatusNoContent)
}

type sessionInfo struct {
	Active    bool            `json:"active"`
	StartedAt *time.Time      `json:"startedAt,omitempty"`
	Ticks     int64           `json:"ticks"`
	Operator  models.Operator `json:"operator"`
	Unread    int             `json:"unread"`
}

// SessionInfo reports whether the tick loop is running.
func (a *API) SessionInfo(w http.ResponseWriter, r *http.Request) {
	info := sessionInfo{
		Active:   a.Session.Active(),
		Ticks:    a.Session.Ticks(),
		Operator: a.Auth.Operator(),
		Unread:   a.Store.UnreadCount(),
	}
	if started := a.Session.StartedAt(); !started.IsZero() {
		info.StartedAt = &started
	}
	writeJSON(w, http.StatusOK, info)
}
