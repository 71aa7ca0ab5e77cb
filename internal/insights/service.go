package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

// DefaultTimeout bounds one remote call.
const DefaultTimeout = 20 * time.Second

// Service answers over a remote model and falls back to Fallback when it is
// offline or the call fails. Identical concurrent requests share one call.
type Service struct {
	mu      sync.RWMutex
	apiKey  string
	gen     Generator
	factory Factory

	fallback Fallback
	timeout  time.Duration
	group    singleflight.Group
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

// WithFallback replaces the offline answers.
func WithFallback(f Fallback) ServiceOption {
	return func(s *Service) { s.fallback = f }
}

// NewService creates an offline service that builds generators with factory.
func NewService(factory Factory, opts ...ServiceOption) *Service {
	s := &Service{factory: factory, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAPIKey re-keys the collaborator. An unchanged key keeps the current
// client; an empty key takes the service offline.
func (s *Service) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if key == s.apiKey && (key == "" || s.gen != nil) {
		return nil
	}
	if key == "" {
		s.apiKey, s.gen = "", nil
		log.Info("Insights collaborator offline")
		return nil
	}
	gen, err := s.factory(ctx, key)
	if err != nil {
		s.apiKey, s.gen = "", nil
		return fmt.Errorf("re-key collaborator: %w", err)
	}
	s.apiKey, s.gen = key, gen
	log.Info("Insights collaborator re-keyed")
	return nil
}

// Online reports whether a remote model is configured.
func (s *Service) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen != nil
}

func (s *Service) generator() Generator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func flightKey(useCase string, p Prompt) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p.Text))
	_, _ = h.Write(p.Image)
	return useCase + ":" + strconv.FormatUint(h.Sum64(), 16)
}

// generate returns ErrOffline without a generator. Remote failures are
// logged here and returned so each use case can pick its fallback.
func (s *Service) generate(ctx context.Context, useCase string, p Prompt) (string, error) {
	gen := s.generator()
	if gen == nil {
		return "", ErrOffline
	}
	v, err, shared := s.group.Do(flightKey(useCase, p), func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return gen.Generate(ctx, p)
	})
	if err != nil {
		log.WithError(err).WithField("use_case", useCase).Warn("Collaborator call failed, using fallback")
		return "", err
	}
	if shared {
		log.WithField("use_case", useCase).Debug("Coalesced collaborator call")
	}
	return strings.TrimSpace(v.(string)), nil
}

func (s *Service) AnalyzeDelay(ctx context.Context, report string) string {
	text, err := s.generate(ctx, "delay", Prompt{Text: delayPrompt(report)})
	if err != nil || text == "" {
		return s.fallback.AnalyzeDelay(ctx, report)
	}
	return text
}

type tripCosts struct {
	Vehicle     string                `json:"vehicle"`
	Route       string                `json:"route"`
	Progress    float64               `json:"progress"`
	Costs       *models.CostBreakdown `json:"costs"`
	CurrentJob  string                `json:"currentJob"`
	VehicleType models.VehicleType    `json:"type"`
}

func (s *Service) SummarizeCosts(ctx context.Context, v models.Vehicle) string {
	trip := tripCosts{
		Vehicle:     v.Name,
		Route:       v.Origin + " - " + v.Destination,
		Progress:    v.Progress,
		Costs:       v.Costs,
		CurrentJob:  v.CurrentJob,
		VehicleType: v.Type,
	}
	text, err := s.generate(ctx, "costs", Prompt{Text: costPrompt(trip)})
	if err != nil || text == "" {
		return s.fallback.SummarizeCosts(ctx, v)
	}
	return text
}

// SuggestDriver falls back when the reply is not the expected JSON or names
// a driver that was not offered.
func (s *Service) SuggestDriver(ctx context.Context, job JobDetails, candidates []models.Driver) DriverSuggestion {
	text, err := s.generate(ctx, "assign", Prompt{Text: driverPrompt(job, candidates), JSON: true})
	if err != nil {
		return s.fallback.SuggestDriver(ctx, job, candidates)
	}
	var out DriverSuggestion
	if err := json.Unmarshal([]byte(stripFence(text)), &out); err != nil || out.RecommendedDriverID == 0 {
		log.WithField("use_case", "assign").Warn("Unusable driver suggestion, using fallback")
		return s.fallback.SuggestDriver(ctx, job, candidates)
	}
	if len(candidates) > 0 && !offered(out.RecommendedDriverID, candidates) {
		log.WithField("driver_id", out.RecommendedDriverID).Warn("Suggested driver was not a candidate, using fallback")
		return s.fallback.SuggestDriver(ctx, job, candidates)
	}
	return out
}

func offered(id int, candidates []models.Driver) bool {
	for _, d := range candidates {
		if d.ID == id {
			return true
		}
	}
	return false
}

type receiptReply struct {
	Station     string  `json:"station"`
	Liters      float64 `json:"liters"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Confidence  float64 `json:"confidence"`
}

// ParseReceipt reads a receipt image. Without an image it answers offline.
func (s *Service) ParseReceipt(ctx context.Context, kind ReceiptKind, image []byte, mimeType string) Receipt {
	if kind != ReceiptExpense {
		kind = ReceiptFuel
	}
	if len(image) == 0 {
		return s.fallback.ParseReceipt(ctx, kind, image, mimeType)
	}
	text, err := s.generate(ctx, "receipt", Prompt{Text: receiptPrompt(kind), Image: image, MIMEType: mimeType, JSON: true})
	if err != nil {
		return s.fallback.ParseReceipt(ctx, kind, image, mimeType)
	}
	var r receiptReply
	if err := json.Unmarshal([]byte(stripFence(text)), &r); err != nil {
		log.WithError(err).WithField("use_case", "receipt").Warn("Unreadable receipt reply, using fallback")
		return s.fallback.ParseReceipt(ctx, kind, image, mimeType)
	}

	stamp := time.Now().Format("03:04 PM")
	if kind == ReceiptExpense {
		cat := models.ExpenseCategory(r.Category)
		if cat != models.ExpenseLabor && cat != models.ExpenseMaintenance {
			cat = models.ExpenseOther
		}
		return Receipt{
			Kind:       kind,
			Expense:    &models.ExpenseEntry{Category: cat, Description: r.Description, Amount: models.Round2(r.Amount), Date: stamp},
			Confidence: r.Confidence,
		}
	}
	total := r.Total
	if total == 0 {
		total = r.Liters * r.Price
	}
	return Receipt{
		Kind: kind,
		Fuel: &models.FuelEntry{
			Timestamp:     stamp,
			Station:       r.Station,
			Liters:        models.Round2(r.Liters),
			PricePerLiter: models.Round2(r.Price),
			TotalCost:     models.Round2(total),
		},
		Confidence: r.Confidence,
	}
}

func (s *Service) Chat(ctx context.Context, message, dashboard string) string {
	text, err := s.generate(ctx, "chat", Prompt{Text: chatPrompt(message, dashboard)})
	switch {
	case errors.Is(err, ErrOffline):
		return chatOfflineText
	case err != nil:
		return chatErrorText
	case text == "":
		return chatEmptyText
	}
	return text
}

func (s *Service) PredictMaintenance(ctx context.Context, vehicleName string, telemetry []models.TelemetryPoint) string {
	text, err := s.generate(ctx, "maintenance", Prompt{Text: maintenancePrompt(vehicleName, telemetry)})
	switch {
	case errors.Is(err, ErrOffline):
		return s.fallback.PredictMaintenance(ctx, vehicleName, telemetry)
	case err != nil:
		return maintenanceErrorText
	case text == "":
		return maintenanceEmptyText
	}
	return text
}

func (s *Service) FleetPerformance(ctx context.Context, m fleet.FleetMetrics) string {
	summary := struct {
		TotalCost      float64          `json:"totalCost"`
		Breakdown      fleet.CostTotals `json:"breakdown"`
		ActiveVehicles int              `json:"activeVehicles"`
		TopDriver      string           `json:"topDriver"`
	}{m.TotalCost, m.Breakdown, m.ActiveVehicles, m.TopDriver}

	text, err := s.generate(ctx, "performance", Prompt{Text: performancePrompt(summary)})
	switch {
	case errors.Is(err, ErrOffline):
		return s.fallback.FleetPerformance(ctx, m)
	case err != nil:
		return performanceErrorText
	case text == "":
		return performanceEmptyText
	}
	return text
}

var _ Assistant = (*Service)(nil)
