package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

var stations = []string{"Petron SLEX Southbound", "Shell Alabang", "Caltex Calamba", "Seaoil Sto. Tomas"}

var tollPlazas = []struct {
	Location string
	Provider models.TollProvider
	Amount   float64
}{
	{"SLEX Alabang", models.ProviderAutoSweep, 245},
	{"SLEX Calamba", models.ProviderAutoSweep, 167},
	{"STAR Tollway Lipa", models.ProviderAutoSweep, 340},
	{"CAVITEX Parañaque", models.ProviderEasyTrip, 184},
	{"NLEX Balintawak", models.ProviderEasyTrip, 328},
}

var issueTypes = []string{"Flat Tire", "Engine Overheat", "Road Closure", "Checkpoint Delay"}

// event is one driver-app report.
type event struct {
	Kind    string
	Payload any
}

// driverApp posts driver events to the dashboard API.
type driverApp struct {
	apiURL string
	token  string
	client *http.Client
	rnd    *rand.Rand
}

func newDriverApp(apiURL, token string, seed int64) *driverApp {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &driverApp{
		apiURL: apiURL,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

func (d *driverApp) authorizedPost(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}
	return d.client.Do(req)
}

// login trades operator credentials for a token.
func (d *driverApp) login(ctx context.Context, username, password string) error {
	resp, err := d.authorizedPost(ctx, "/auth/login", models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status: %d", resp.StatusCode)
	}
	var out models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	d.token = out.Token
	return nil
}

// nextEvent picks a report: mostly status flips, fuel and tolls, and the
// occasional issue.
func (d *driverApp) nextEvent() event {
	switch p := d.rnd.Float64(); {
	case p < 0.4:
		status := models.StatusInTransit
		if d.rnd.Intn(2) == 0 {
			status = models.StatusStationary
		}
		return event{"status", map[string]models.VehicleStatus{"status": status}}
	case p < 0.65:
		return event{"fuel", models.FuelEntry{
			Station: stations[d.rnd.Intn(len(stations))],
			Liters:  models.Round2(20 + d.rnd.Float64()*40),
		}}
	case p < 0.9:
		plaza := tollPlazas[d.rnd.Intn(len(tollPlazas))]
		return event{"toll", models.TollEntry{Location: plaza.Location, Provider: plaza.Provider, Amount: plaza.Amount}}
	default:
		return event{"issue", fleet.IssueReport{
			Type:        issueTypes[d.rnd.Intn(len(issueTypes))],
			Description: "Reported from the driver app",
		}}
	}
}

// send posts ev for driverID.
func (d *driverApp) send(ctx context.Context, driverID int, ev event) error {
	resp, err := d.authorizedPost(ctx, "/drivers/"+strconv.Itoa(driverID)+"/events/"+ev.Kind, ev.Payload)
	if err != nil {
		return fmt.Errorf("failed to send %s event: %w", ev.Kind, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s event failed with status %d: %s", ev.Kind, resp.StatusCode, bytes.TrimSpace(body))
	}
	log.WithFields(log.Fields{"driver_id": driverID, "kind": ev.Kind}).Info("Sent driver event")
	return nil
}

// drive sends one event per driver every interval until ctx is done or
// rounds are used up. Zero rounds runs until cancelled.
func (d *driverApp) drive(ctx context.Context, drivers []int, interval time.Duration, rounds int) int {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	sent := 0
	for round := 0; rounds == 0 || round < rounds; round++ {
		for _, id := range drivers {
			if err := d.send(ctx, id, d.nextEvent()); err != nil {
				log.WithError(err).WithField("driver_id", id).Warn("Driver event rejected")
				continue
			}
			sent++
		}
		if rounds != 0 && round == rounds-1 {
			break
		}
		select {
		case <-ctx.Done():
			return sent
		case <-tick.C:
		}
	}
	return sent
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newDriveCmd() *cobra.Command {
	var (
		apiURL   string
		token    string
		username string
		password string
		drivers  []int
		interval time.Duration
		rounds   int
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Post driver app events to a running dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(drivers) == 0 {
				return fmt.Errorf("at least one --driver is required")
			}
			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := newDriverApp(apiURL, token, seed)
			if app.token == "" {
				if err := app.login(ctx, username, password); err != nil {
					return err
				}
			}
			log.WithFields(log.Fields{
				"api_url":  apiURL,
				"drivers":  drivers,
				"interval": interval,
			}).Info("Starting driver simulation")

			sent := app.drive(ctx, drivers, interval, rounds)
			log.WithField("sent", sent).Info("Driver simulation finished")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&apiURL, "api", envOr("API_BASE_URL", "http://localhost:8080/api"), "dashboard API base URL")
	f.StringVar(&token, "token", os.Getenv("SIM_AUTH_TOKEN"), "bearer token; logs in when empty")
	f.StringVar(&username, "username", envOr("ADMIN_USERNAME", "admin"), "operator username for login")
	f.StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "operator password for login")
	f.IntSliceVar(&drivers, "driver", []int{1, 2, 3, 4, 5}, "driver ids to simulate")
	f.DurationVar(&interval, "interval", 5*time.Second, "time between rounds")
	f.IntVar(&rounds, "rounds", 0, "rounds to send, 0 runs until interrupted")
	f.Int64Var(&seed, "seed", 0, "random seed, 0 picks one")
	return cmd
}
