package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-dispatch/internal/config"
	"github.com/ukydev/fleet-dispatch/internal/db"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

type MockSnapshotCollection struct {
	mock.Mock
}

func (m *MockSnapshotCollection) InsertSnapshot(ctx context.Context, snap models.FleetSnapshot) error {
	return m.Called(ctx, snap).Error(0)
}

func testConfig() config.Config {
	return config.Config{
		Port:          "0",
		TickInterval:  time.Hour,
		Seed:          11,
		AdminUsername: "admin",
		AdminPassword: "admin1234",
		JWTExpiry:     time.Hour,
		GeminiModel:   "gemini-2.5-flash",
		MongoDB:       "fleet",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin","password":"admin1234"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func TestNewApp_Defaults(t *testing.T) {
	a, err := newApp(context.Background(), testConfig())
	require.NoError(t, err)
	t.Cleanup(a.session.Stop)

	assert.Nil(t, a.link, "no broker configured")
	assert.Nil(t, a.archiver, "no database configured")
	assert.Equal(t, ":0", a.server.Addr)
	assert.Len(t, a.store.Snapshot().Vehicles, 9)
	assert.Len(t, a.store.Notifications(), 4)

	w := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	token := login(t, a.server.Handler)
	assert.True(t, a.session.Active())

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	a.server.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewApp_SettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("general:\n  company_name: RVL Movers Visayas\n"), 0o600))

	cfg := testConfig()
	cfg.SettingsFile = path
	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "RVL Movers Visayas", a.store.Settings().General.CompanyName)
	assert.Equal(t, 68.5, a.store.Settings().Costs.FuelPrice)
}

func TestNewApp_Invalid(t *testing.T) {
	cfg := testConfig()
	cfg.AdminPassword = "short"
	_, err := newApp(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.SettingsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = newApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestApp_RunArchivesOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a, err := newApp(ctx, testConfig())
	require.NoError(t, err)

	coll := new(MockSnapshotCollection)
	coll.On("InsertSnapshot", mock.Anything, mock.MatchedBy(func(s models.FleetSnapshot) bool {
		return s.Reason == db.ReasonShutdown && len(s.Vehicles) == 9
	})).Return(nil).Once()
	a.archiver = db.NewArchiver(coll, a.store)

	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()

	login(t, a.server.Handler)
	require.True(t, a.session.Active())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	assert.False(t, a.session.Active())
	coll.AssertExpectations(t)
}
