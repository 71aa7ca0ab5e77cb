package db

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dispatch/internal/models"
	"github.com/ukydev/fleet-dispatch/internal/store"
)

// Snapshot reasons.
const (
	ReasonLogout   = "logout"
	ReasonShutdown = "shutdown"
)

// Archiver copies the live fleet into a SnapshotCollection. It never reads
// anything back.
type Archiver struct {
	coll  SnapshotCollection
	store *store.Store
	now   func() time.Time
}

// NewArchiver returns an archiver writing st into coll.
func NewArchiver(coll SnapshotCollection, st *store.Store) *Archiver {
	return &Archiver{coll: coll, store: st, now: time.Now}
}

// Archive writes the current fleet, drivers and feed.
func (a *Archiver) Archive(ctx context.Context, reason string) error {
	state := a.store.Snapshot()
	snap := models.FleetSnapshot{
		Reason:        reason,
		Vehicles:      state.Vehicles,
		Drivers:       state.Drivers,
		Notifications: a.store.Notifications(),
		TakenAt:       a.now(),
	}
	if err := a.coll.InsertSnapshot(ctx, snap); err != nil {
		log.WithError(err).WithField("reason", reason).Error("Failed to archive fleet snapshot")
		return err
	}
	log.WithFields(log.Fields{
		"reason":   reason,
		"vehicles": len(snap.Vehicles),
	}).Info("Fleet snapshot archived")
	return nil
}
