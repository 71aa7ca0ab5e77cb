// Package simulator drives the fleet tick while a dashboard session is
// active.
package simulator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/store"
)

// DefaultInterval is the tick period of the reference dashboard.
const DefaultInterval = 1500 * time.Millisecond

// Config holds session parameters.
type Config struct {
	Interval time.Duration
	Seed     int64 // 0 picks a time-based seed
	Clock    Clock
}

// Session runs one tick goroutine between Start and Stop.
type Session struct {
	store    *store.Store
	clock    Clock
	interval time.Duration
	rnd      fleet.Random

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
	deadline  time.Time

	ticks atomic.Int64
}

// NewSession creates an inactive session over st.
func NewSession(st *store.Store, cfg Config) *Session {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	return &Session{
		store:    st,
		clock:    cfg.Clock,
		interval: cfg.Interval,
		rnd:      fleet.NewRandom(cfg.Seed),
	}
}

// Start launches the tick loop. It reports false if the session was
// already running.
func (s *Session) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.startedAt = s.clock.Now()
	s.deadline = time.Time{}
	ticker := s.clock.NewTicker(s.interval)

	go s.run(ctx, ticker, s.done)

	log.WithField("interval", s.interval).Info("Simulation session started")
	return true
}

// Stop ends the session and waits for the loop to exit. No tick is applied
// after Stop returns.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.WithField("ticks", s.ticks.Load()).Info("Simulation session stopped")
}

// ExtendUntil ends the running session at t unless a later deadline is
// already set. The loop checks it on every tick.
func (s *Session) ExtendUntil(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil && t.After(s.deadline) {
		s.deadline = t
	}
}

// expire ends the session owning done once its deadline has passed.
func (s *Session) expire(done chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done || s.deadline.IsZero() || s.clock.Now().Before(s.deadline) {
		return false
	}
	s.cancel()
	s.cancel, s.done = nil, nil
	return true
}

// Active reports whether the tick loop is running.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// StartedAt returns when the current session started, zero if inactive.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return time.Time{}
	}
	return s.startedAt
}

// Ticks returns how many ticks have been applied in this process.
func (s *Session) Ticks() int64 {
	return s.ticks.Load()
}

// Step applies one tick now, outside the loop.
func (s *Session) Step() error {
	_, err := s.store.Apply(store.ActionTick, func(st fleet.State) (fleet.State, fleet.Effects, error) {
		next, fx := fleet.Tick(st, s.rnd)
		return next, fx, nil
	})
	if err == nil {
		s.ticks.Add(1)
	}
	return err
}

func (s *Session) run(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			// a cancel that races a tick wins
			if ctx.Err() != nil {
				return
			}
			if s.expire(done) {
				log.WithField("ticks", s.ticks.Load()).Info("Simulation session expired")
				return
			}
			if err := s.Step(); err != nil {
				log.WithError(err).Error("Tick failed")
			}
		}
	}
}
