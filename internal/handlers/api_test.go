package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-dispatch/internal/auth"
	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/insights"
	"github.com/ukydev/fleet-dispatch/internal/models"
	"github.com/ukydev/fleet-dispatch/internal/simulator"
	"github.com/ukydev/fleet-dispatch/internal/store"
)

type MockKeySetter struct {
	mock.Mock
}

func (m *MockKeySetter) SetAPIKey(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, reason string) error {
	return m.Called(ctx, reason).Error(0)
}

type testAPI struct {
	*API
	handler http.Handler
	token   string
}

type option func(*Deps)

func newTestAPI(t *testing.T, opts ...option) *testAPI {
	t.Helper()
	st := store.NewSeeded()
	authService, err := auth.NewService(auth.Config{AdminUsername: "admin", AdminPassword: "admin1234"})
	require.NoError(t, err)

	d := Deps{
		Store:     st,
		Session:   simulator.NewSession(st, simulator.Config{Interval: time.Hour, Seed: 7}),
		Auth:      authService,
		Assistant: insights.NewService(insights.GenAIFactory("")),
		Env:       fleet.NewEnv(fleet.NewRandom(7)),
	}
	for _, opt := range opts {
		opt(&d)
	}
	api := New(d)
	t.Cleanup(api.Session.Stop)

	ta := &testAPI{API: api, handler: api.Routes()}
	rec := ta.do(t, "POST", "/api/auth/login", `{"username":"admin","password":"admin1234"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	ta.token = resp.Token
	return ta
}

func (ta *testAPI) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if ta.token != "" {
		req.Header.Set("Authorization", "Bearer "+ta.token)
	}
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ta *testAPI) vehicleByID(t *testing.T, id string) models.Vehicle {
	t.Helper()
	v, ok := ta.Store.Snapshot().Vehicle(id)
	require.True(t, ok, "vehicle %s", id)
	return v
}

func TestHealthAndAuthGate(t *testing.T) {
	ta := newTestAPI(t)

	token := ta.token
	ta.token = ""
	assert.Equal(t, http.StatusOK, ta.do(t, "GET", "/health", "").Code)
	assert.Equal(t, http.StatusUnauthorized, ta.do(t, "GET", "/api/vehicles", "").Code)

	rec := ta.do(t, "POST", "/api/auth/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ta.do(t, "POST", "/api/auth/login", `{"username":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ta.token = token
	assert.Equal(t, http.StatusOK, ta.do(t, "GET", "/api/vehicles", "").Code)
}

func TestLoginStartsSessionAndLogoutEndsIt(t *testing.T) {
	archiver := new(MockArchiver)
	archiver.On("Archive", mock.Anything, "logout").Return(nil).Once()
	ta := newTestAPI(t, func(d *Deps) { d.Archiver = archiver })

	assert.True(t, ta.Session.Active())
	info := decodeBody[sessionInfo](t, ta.do(t, "GET", "/api/session", ""))
	assert.True(t, info.Active)
	assert.NotNil(t, info.StartedAt)
	assert.Equal(t, 3, info.Unread)

	rec := ta.do(t, "POST", "/api/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, ta.Session.Active())
	archiver.AssertExpectations(t)

	assert.Equal(t, http.StatusUnauthorized, ta.do(t, "GET", "/api/vehicles", "").Code, "token revoked")
}

func TestListVehicles(t *testing.T) {
	ta := newTestAPI(t)

	all := decodeBody[[]models.Vehicle](t, ta.do(t, "GET", "/api/vehicles", ""))
	assert.Len(t, all, 9)

	moving := decodeBody[[]models.Vehicle](t, ta.do(t, "GET", "/api/vehicles?status=In+transit", ""))
	require.NotEmpty(t, moving)
	for _, v := range moving {
		assert.Equal(t, models.StatusInTransit, v.Status)
	}
}

func TestCreateJob(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, "POST", "/api/jobs", `{"client":"Toyota Sta. Rosa","origin":"Sta. Rosa","destination":"Batangas Port","vehicleType":"10W Wingvan","driverId":6}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[actionResponse](t, rec)
	require.NotNil(t, resp.Vehicle)
	assert.Equal(t, models.StatusLoading, resp.Vehicle.Status)
	assert.Equal(t, "Vhong Navarro", resp.Vehicle.Driver)
	assert.Equal(t, "Toyota Sta. Rosa - Logistics", resp.Vehicle.CurrentJob)
	assert.Equal(t, resp.Vehicle.ID, ta.Store.Snapshot().Vehicles[0].ID)

	assert.Equal(t, http.StatusBadRequest, ta.do(t, "POST", "/api/jobs", `{"origin":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, "POST", "/api/jobs", `{"client":"x","driverId":99}`).Code)
	assert.Equal(t, http.StatusBadRequest, ta.do(t, "POST", "/api/jobs", `{"client":`).Code)
}

func TestDeleteVehicleNeedsConfirmation(t *testing.T) {
	ta := newTestAPI(t)

	resp := decodeBody[actionResponse](t, ta.do(t, "DELETE", "/api/vehicles/7", ""))
	assert.True(t, resp.Declined)
	ta.vehicleByID(t, "7")

	resp = decodeBody[actionResponse](t, ta.do(t, "DELETE", "/api/vehicles/7?confirm=true", ""))
	assert.False(t, resp.Declined)
	_, ok := ta.Store.Snapshot().Vehicle("7")
	assert.False(t, ok)

	assert.Equal(t, http.StatusNotFound, ta.do(t, "DELETE", "/api/vehicles/7?confirm=true", "").Code)
}

func TestCompleteTripAndDock(t *testing.T) {
	ta := newTestAPI(t)

	resp := decodeBody[actionResponse](t, ta.do(t, "POST", "/api/vehicles/1/complete", `{"confirm":false}`))
	assert.True(t, resp.Declined)

	resp = decodeBody[actionResponse](t, ta.do(t, "POST", "/api/vehicles/1/complete", `{"confirm":true}`))
	require.NotNil(t, resp.Vehicle)
	assert.Equal(t, models.StatusStationary, resp.Vehicle.Status)

	rec := ta.do(t, "POST", "/api/vehicles/2/dock", `{"status":"In transit","progress":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusInTransit, ta.vehicleByID(t, "2").Status)
	assert.Equal(t, "Vehicle Dispatched", ta.Store.Notifications()[0].Title)

	rec = ta.do(t, "POST", "/api/vehicles/7/dock", `{"status":"In transit","progress":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.StatusStationary, ta.vehicleByID(t, "7").Status)

	resp = decodeBody[actionResponse](t, ta.do(t, "POST", "/api/vehicles/4/dock/advance", `{"confirm":true}`))
	require.NotNil(t, resp.Vehicle)
	assert.Equal(t, models.StatusStationary, resp.Vehicle.Status)
}

func TestEditVehicle(t *testing.T) {
	ta := newTestAPI(t)
	v := ta.vehicleByID(t, "3")
	v.Destination = "Pasay City"
	body, err := json.Marshal(v)
	require.NoError(t, err)

	rec := ta.do(t, "PUT", "/api/vehicles/3", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Pasay City", ta.vehicleByID(t, "3").Destination)

	assert.Equal(t, http.StatusNotFound, ta.do(t, "PUT", "/api/vehicles/zzz?asset=true", string(body)).Code)
}

func TestSaveVehicle(t *testing.T) {
	ta := newTestAPI(t)
	rec := ta.do(t, "POST", "/api/vehicles", `{"name":"RVL-2026","type":"Car Carrier","status":"Stationary","fuelLevel":100}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[actionResponse](t, rec)
	require.NotNil(t, resp.Vehicle)
	assert.Equal(t, "RVL-2026", resp.Vehicle.Name)
	assert.True(t, strings.HasPrefix(resp.Vehicle.ID, "rvl-"))

	assert.Equal(t, http.StatusBadRequest, ta.do(t, "POST", "/api/vehicles", `{"name":"x","type":"Bus","status":"Stationary"}`).Code)
}

func TestTollLedger(t *testing.T) {
	ta := newTestAPI(t)
	before := *ta.vehicleByID(t, "1").Costs

	rec := ta.do(t, "POST", "/api/vehicles/1/tolls", `{"location":"SLEX Calamba","provider":"EasyTrip","amount":120.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	after := *ta.vehicleByID(t, "1").Costs
	assert.InDelta(t, before.Tolls+120.5, after.Tolls, 0.001)
	assert.InDelta(t, before.Total+120.5, after.Total, 0.001)

	rec = ta.do(t, "PUT", "/api/vehicles/1/tolls/t2", `{"location":"STAR Tollway Lipa","provider":"AutoSweep","amount":400}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, after.Tolls+60, ta.vehicleByID(t, "1").Costs.Tolls, 0.001)

	rec = ta.do(t, "DELETE", "/api/vehicles/1/tolls/t2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, after.Tolls-340, ta.vehicleByID(t, "1").Costs.Tolls, 0.001)

	assert.Equal(t, http.StatusNotFound, ta.do(t, "DELETE", "/api/vehicles/1/tolls/t2", "").Code)
	assert.Equal(t, http.StatusBadRequest, ta.do(t, "POST", "/api/vehicles/1/tolls", `{"amount":-1}`).Code)
}

func TestFuelAndExpenseLedger(t *testing.T) {
	ta := newTestAPI(t)
	before := *ta.vehicleByID(t, "3").Costs

	rec := ta.do(t, "POST", "/api/vehicles/3/fuel", `{"station":"Petron","liters":20}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	costs := ta.vehicleByID(t, "3").Costs
	assert.InDelta(t, before.Fuel+20*68.5, costs.Fuel, 0.001)

	entryID := costs.FuelEntries[len(costs.FuelEntries)-1].ID
	rec = ta.do(t, "PUT", "/api/vehicles/3/fuel/"+entryID, `{"station":"Petron","liters":10,"pricePerLiter":70}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, before.Fuel+700, ta.vehicleByID(t, "3").Costs.Fuel, 0.001)

	rec = ta.do(t, "DELETE", "/api/vehicles/3/fuel/"+entryID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, before.Fuel, ta.vehicleByID(t, "3").Costs.Fuel, 0.001)

	rec = ta.do(t, "POST", "/api/vehicles/3/expenses", `{"category":"Labor","description":"Helper","amount":600}`)
	require.Equal(t, http.StatusOK, rec.Code)
	costs = ta.vehicleByID(t, "3").Costs
	assert.InDelta(t, before.Labor+600, costs.Labor, 0.001)

	rec = ta.do(t, "DELETE", "/api/vehicles/3/expenses/"+costs.ExpenseEntries[0].ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, before.Labor, ta.vehicleByID(t, "3").Costs.Labor, 0.001)
}

func TestDrivers(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, "POST", "/api/drivers", `{"name":"Piolo Pascual","phone":"0917-555-0101","license":"N05-21-000111","rating":4.4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[actionResponse](t, rec)
	require.NotNil(t, resp.Driver)
	assert.Equal(t, 8, resp.Driver.ID)
	assert.Equal(t, models.DriverAvailable, resp.Driver.Status)

	rec = ta.do(t, "PUT", "/api/drivers/8", `{"name":"Piolo Pascual","status":"On Leave"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	d, _ := ta.Store.Snapshot().Driver(8)
	assert.Equal(t, models.DriverOnLeave, d.Status)

	assert.Equal(t, http.StatusNotFound, ta.do(t, "PUT", "/api/drivers/99", `{"name":"Ghost"}`).Code)
	assert.Equal(t, http.StatusBadRequest, ta.do(t, "DELETE", "/api/drivers/abc?confirm=true", "").Code)

	rec = ta.do(t, "DELETE", "/api/drivers/8?confirm=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	drivers := decodeBody[[]models.Driver](t, ta.do(t, "GET", "/api/drivers", ""))
	assert.Len(t, drivers, 7)
}

func TestDriverEvents(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, "POST", "/api/drivers/1/events/issue", `{"type":"Flat Tire","description":"SLEX km 42"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[actionResponse](t, rec)
	require.NotNil(t, resp.Vehicle)
	assert.Equal(t, models.StatusDelayed, resp.Vehicle.Status)

	rec = ta.do(t, "POST", "/api/drivers/6/events/status", `{"status":"In transit"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeBody[actionResponse](t, rec)
	require.Len(t, resp.Toasts, 1)
	assert.Equal(t, "No vehicle assigned to Vhong Navarro", resp.Toasts[0].Message)

	assert.Equal(t, http.StatusBadRequest, ta.do(t, "POST", "/api/drivers/1/events/status", `{"status":"Loading"}`).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, "POST", "/api/drivers/1/events/horn", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, "POST", "/api/drivers/42/events/toll", `{"amount":1}`).Code)
}

func TestNotificationsAndToasts(t *testing.T) {
	ta := newTestAPI(t)
	_ = ta.do(t, "POST", "/api/vehicles/1/tolls", `{"location":"SLEX","amount":10}`)

	feed := decodeBody[notificationsResponse](t, ta.do(t, "GET", "/api/notifications", ""))
	assert.Equal(t, 3, feed.Unread)
	assert.Len(t, feed.Notifications, 4)

	assert.Equal(t, http.StatusNoContent, ta.do(t, "POST", "/api/notifications/read", "").Code)
	feed = decodeBody[notificationsResponse](t, ta.do(t, "GET", "/api/notifications", ""))
	assert.Zero(t, feed.Unread)

	toasts := decodeBody[[]models.Toast](t, ta.do(t, "GET", "/api/toasts", ""))
	require.NotEmpty(t, toasts)
	id := toasts[0].ID
	assert.Equal(t, http.StatusNoContent, ta.do(t, "DELETE", "/api/toasts/"+strconv.FormatInt(id, 10), "").Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, "DELETE", "/api/toasts/"+strconv.FormatInt(id, 10), "").Code)
	assert.Equal(t, http.StatusBadRequest, ta.do(t, "DELETE", "/api/toasts/x", "").Code)
}

func TestSettings(t *testing.T) {
	keys := new(MockKeySetter)
	keys.On("SetAPIKey", mock.Anything, "gm-secret").Return(nil)
	ta := newTestAPI(t, func(d *Deps) { d.Keys = keys })

	rec := ta.do(t, "PUT", "/api/settings/costs", `{"fuelPrice":70,"perDiem":550,"apiKey":"gm-secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	settings := decodeBody[models.Settings](t, ta.do(t, "GET", "/api/settings", ""))
	assert.Equal(t, APIKeyMask, settings.Costs.APIKey)
	assert.Equal(t, 70.0, settings.Costs.FuelPrice)

	rec = ta.do(t, "PUT", "/api/settings/costs", `{"fuelPrice":72,"perDiem":550,"apiKey":"`+APIKeyMask+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gm-secret", ta.Store.Settings().Costs.APIKey)
	keys.AssertNumberOfCalls(t, "SetAPIKey", 2)

	assert.Equal(t, http.StatusBadRequest, ta.do(t, "PUT", "/api/settings/costs", `{"fuelPrice":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, ta.do(t, "PUT", "/api/settings/general", `{"companyName":" "}`).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, "PUT", "/api/settings/theme", `{}`).Code)

	rec = ta.do(t, "PUT", "/api/settings/notifications", `{"emailAlerts":false,"delayAlerts":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ta.Store.Settings().Notifications.EmailAlerts)
}

func TestApplySettings(t *testing.T) {
	keys := new(MockKeySetter)
	keys.On("SetAPIKey", mock.Anything, "from-file").Return(nil).Once()
	ta := newTestAPI(t, func(d *Deps) { d.Keys = keys })

	next := models.DefaultSettings()
	next.General.CompanyName = "RVL Movers North"
	next.Costs.APIKey = "from-file"
	require.NoError(t, ta.ApplySettings(context.Background(), next))
	assert.Equal(t, next, ta.Store.Settings())
	keys.AssertExpectations(t)

	bad := next
	bad.Costs.FuelPrice = -1
	assert.ErrorIs(t, ta.ApplySettings(context.Background(), bad), fleet.ErrInvalidInput)
	assert.Equal(t, next, ta.Store.Settings())
}

func TestSearchMetricsAndReport(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, "GET", "/api/search?q=rvl-1005", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found struct {
		Vehicle *models.Vehicle `json:"vehicle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.NotNil(t, found.Vehicle)
	assert.Equal(t, "1", found.Vehicle.ID)

	m := decodeBody[fleet.FleetMetrics](t, ta.do(t, "GET", "/api/metrics", ""))
	assert.Equal(t, fleet.Metrics(ta.Store.Snapshot()).TotalCost, m.TotalCost)

	rec = ta.do(t, "GET", "/api/reports/costs.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 10)
}

func TestInsightsOffline(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, "POST", "/api/insights/delay", `{"vehicleId":"5"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	text := decodeBody[textResponse](t, rec)
	assert.False(t, text.Online)
	assert.NotEmpty(t, text.Text)

	assert.Equal(t, http.StatusBadRequest, ta.do(t, "POST", "/api/insights/delay", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, "POST", "/api/insights/costs/nope", "").Code)
	assert.Equal(t, http.StatusOK, ta.do(t, "POST", "/api/insights/costs/1", "").Code)
	assert.Equal(t, http.StatusOK, ta.do(t, "POST", "/api/insights/maintenance/1", "").Code)
	assert.Equal(t, http.StatusOK, ta.do(t, "POST", "/api/insights/performance", "").Code)
	assert.Equal(t, http.StatusBadRequest, ta.do(t, "POST", "/api/insights/chat", `{"message":" "}`).Code)

	suggestion := decodeBody[insights.DriverSuggestion](t, ta.do(t, "POST", "/api/insights/assign", `{"id":"job-1","client":"Honda"}`))
	assert.Equal(t, 6, suggestion.RecommendedDriverID, "Vhong Navarro is the only available driver")

	req := httptest.NewRequest("POST", "/api/vehicles/1/receipts?type=fuel", bytes.NewReader(nil))
	req.Header.Set("Authorization", "Bearer "+ta.token)
	w := httptest.NewRecorder()
	ta.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	receipt := decodeBody[insights.Receipt](t, w)
	require.NotNil(t, receipt.Fuel)
	assert.Equal(t, "Shell SLEX Southbound", receipt.Fuel.Station)

	assert.Equal(t, http.StatusBadRequest, ta.do(t, "POST", "/api/vehicles/1/receipts?type=toll", "").Code)
}

type MockAssistant struct {
	insights.Fallback
	mock.Mock
}

func (m *MockAssistant) Chat(ctx context.Context, message, dashboard string) string {
	return m.Called(ctx, message, dashboard).String(0)
}

func TestChatCarriesDashboardContext(t *testing.T) {
	assistant := new(MockAssistant)
	assistant.On("Chat", mock.Anything, "How many trucks are delayed?", mock.MatchedBy(func(ctx string) bool {
		return strings.Contains(ctx, "RVL Movers Corporation") && strings.Contains(ctx, "9 vehicles")
	})).Return("One truck is delayed.")
	ta := newTestAPI(t, func(d *Deps) { d.Assistant = assistant })

	rec := ta.do(t, "POST", "/api/insights/chat", `{"message":"How many trucks are delayed?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "One truck is delayed.", decodeBody[textResponse](t, rec).Text)
	assistant.AssertExpectations(t)
}

func TestDemoControls(t *testing.T) {
	ta := newTestAPI(t)
	assert.Equal(t, http.StatusNotFound, ta.do(t, "POST", "/api/demo/delay", "").Code)

	ta = newTestAPI(t, func(d *Deps) { d.DemoControls = true })
	rec := ta.do(t, "POST", "/api/demo/delay", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Critical Alert", ta.Store.Notifications()[0].Title)
	assert.Equal(t, http.StatusOK, ta.do(t, "POST", "/api/demo/fuel", "").Code)
	assert.Equal(t, http.StatusOK, ta.do(t, "POST", "/api/demo/maintenance", "").Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, "POST", "/api/demo/fire", "").Code)
}

func TestViewerCannotMutate(t *testing.T) {
	ta := newTestAPI(t)
	token, _, err := ta.Auth.GenerateToken(&models.Operator{Username: "auditor", Role: models.RoleViewer})
	require.NoError(t, err)
	ta.token = token

	assert.Equal(t, http.StatusOK, ta.do(t, "GET", "/api/vehicles", "").Code)
	assert.Equal(t, http.StatusForbidden, ta.do(t, "DELETE", "/api/vehicles/1?confirm=true", "").Code)
}
