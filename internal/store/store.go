// Package store owns the live fleet snapshot and the notification feed.
// Every mutation runs a fleet reducer against the current snapshot under one
// lock, so concurrent writers (the tick, HTTP handlers, the driver link)
// never lose updates.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

// ActionTick is the action name the simulator applies under.
const ActionTick = "tick"

var ErrRejected = errors.New("state change rejected")

// EventKind tags what an Event carries.
type EventKind string

const (
	EventNotification EventKind = "notification"
	EventToast        EventKind = "toast"
	EventVehicles     EventKind = "vehicles"
)

// Event is one committed change, fanned out to subscribers.
type Event struct {
	Kind         EventKind            `json:"kind"`
	Action       string               `json:"action"`
	Notification *models.Notification `json:"notification,omitempty"`
	Toast        *models.Toast        `json:"toast,omitempty"`
	Vehicles     []models.Vehicle     `json:"vehicles,omitempty"`
}

// Subscriber receives events after the lock is released. It must not block.
type Subscriber func(Event)

// Store is the single writer in front of the fleet snapshot.
type Store struct {
	mu            sync.Mutex
	state         fleet.State
	notifications []models.Notification // newest first
	toasts        []models.Toast
	lastNotice    int64
	lastToast     int64
	now           func() time.Time

	subMu  sync.RWMutex
	subs   map[int]Subscriber
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for timestamps and toast expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSeedFeed preloads the notification feed.
func WithSeedFeed(seed []fleet.SeedNotification) Option {
	return func(s *Store) {
		for _, n := range seed {
			s.lastNotice++
			s.notifications = append([]models.Notification{{
				ID:        s.lastNotice,
				Title:     n.Title,
				Message:   n.Message,
				Type:      n.Type,
				CreatedAt: s.now().Add(-n.Age),
				Read:      n.Read,
			}}, s.notifications...)
		}
	}
}

// New creates a store holding initial.
func New(initial fleet.State, opts ...Option) *Store {
	s := &Store{
		state: initial.Clone(),
		now:   time.Now,
		subs:  make(map[int]Subscriber),
	}
	// the clock must be set before the seed feed is stamped
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewSeeded creates a store with the seed fleet and feed.
func NewSeeded(opts ...Option) *Store {
	s := New(fleet.Seed(), opts...)
	WithSeedFeed(fleet.SeedNotifications())(s)
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() fleet.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Settings returns the current settings.
func (s *Store) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// Apply runs reducer on the current snapshot and commits the result if it
// passes the invariant check. Aborted reducers commit nothing.
func (s *Store) Apply(action string, reducer fleet.Reducer) (fleet.Effects, error) {
	s.mu.Lock()
	next, fx, err := reducer(s.state)
	if err != nil {
		s.mu.Unlock()
		return fx, err
	}
	if fx.Aborted {
		s.mu.Unlock()
		log.WithField("action", action).Info("Action declined")
		return fx, nil
	}
	if err := fleet.CheckInvariants(next); err != nil {
		s.mu.Unlock()
		log.WithError(err).WithField("action", action).Error("Rejected state change")
		return fleet.Effects{}, fmt.Errorf("%w: %s: %v", ErrRejected, action, err)
	}
	s.state = next
	events := s.materialize(action, fx)
	events = append(events, Event{Kind: EventVehicles, Action: action, Vehicles: next.Clone().Vehicles})
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"action":        action,
		"notifications": len(fx.Notifications),
		"toasts":        len(fx.Toasts),
	}).Debug("Applied action")

	s.publish(events)
	return fx, nil
}

// Emit records effects that come without a state change, such as search
// feedback.
func (s *Store) Emit(action string, fx fleet.Effects) {
	if fx.Empty() {
		return
	}
	s.mu.Lock()
	events := s.materialize(action, fx)
	s.mu.Unlock()
	s.publish(events)
}

// materialize turns drafts into feed entries. Caller holds mu.
func (s *Store) materialize(action string, fx fleet.Effects) []Event {
	now := s.now()
	events := make([]Event, 0, len(fx.Notifications)+len(fx.Toasts))
	for _, d := range fx.Notifications {
		s.lastNotice++
		n := models.Notification{ID: s.lastNotice, Title: d.Title, Message: d.Message, Type: d.Type, CreatedAt: now}
		s.notifications = append([]models.Notification{n}, s.notifications...)
		events = append(events, Event{Kind: EventNotification, Action: action, Notification: &n})
	}
	for _, d := range fx.Toasts {
		s.lastToast++
		t := models.Toast{ID: s.lastToast, Message: d.Message, Type: d.Type, CreatedAt: now, ExpiresAt: now.Add(models.ToastLifetime)}
		s.toasts = append(s.toasts, t)
		events = append(events, Event{Kind: EventToast, Action: action, Toast: &t})
	}
	return events
}

// Notifications returns the feed, newest first.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

// UnreadCount returns how many notifications are unread.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, x := range s.notifications {
		if !x.Read {
			n++
		}
	}
	return n
}

// MarkAllRead flips every read flag. Nothing is deleted.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
}

// Toasts returns the toasts that have not expired, oldest first.
func (s *Store) Toasts() []models.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	live := make([]models.Toast, 0, len(s.toasts))
	for _, t := range s.toasts {
		if !t.Expired(now) {
			live = append(live, t)
		}
	}
	return live
}

// DismissToast removes one toast before it expires.
func (s *Store) DismissToast(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.toasts {
		if s.toasts[i].ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return true
		}
	}
	return false
}

// PruneToasts drops expired toasts and reports how many went.
func (s *Store) PruneToasts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	kept := s.toasts[:0]
	for _, t := range s.toasts {
		if !t.Expired(now) {
			kept = append(kept, t)
		}
	}
	pruned := len(s.toasts) - len(kept)
	s.toasts = kept
	return pruned
}

// Subscribe registers fn for every future event and returns a function
// that removes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(events []Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, ev := range events {
		for _, fn := range s.subs {
			fn(ev)
		}
	}
}
