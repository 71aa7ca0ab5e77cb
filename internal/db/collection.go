package db

import (
	"context"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// SnapshotCollection defines the interface for the write-only fleet archive.
type SnapshotCollection interface {
	InsertSnapshot(ctx context.Context, snap models.FleetSnapshot) error
}
