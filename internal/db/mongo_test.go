package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-dispatch/internal/models"
	"github.com/ukydev/fleet-dispatch/internal/store"
)

type MockSnapshotCollection struct {
	mock.Mock
}

func (m *MockSnapshotCollection) InsertSnapshot(ctx context.Context, snap models.FleetSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func TestConnectMongo_BadURI(t *testing.T) {
	client, err := ConnectMongo(context.Background(), "mongodb://bad:uri")
	assert.Error(t, err)
	assert.Nil(t, client)

	_, err = ConnectMongo(context.Background(), "")
	assert.Error(t, err)
}

func TestInsertSnapshot_NilCollection(t *testing.T) {
	coll := &MongoCollection{Collection: nil}
	err := coll.InsertSnapshot(context.Background(), models.FleetSnapshot{})
	assert.ErrorIs(t, err, ErrNilCollection)
}

func TestArchiver_Archive(t *testing.T) {
	st := store.NewSeeded()
	coll := new(MockSnapshotCollection)
	taken := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)

	coll.On("InsertSnapshot", mock.Anything, mock.MatchedBy(func(s models.FleetSnapshot) bool {
		return s.Reason == ReasonLogout && len(s.Vehicles) == 9 && len(s.Drivers) == 7 &&
			len(s.Notifications) == 4 && s.TakenAt.Equal(taken)
	})).Return(nil).Once()

	a := NewArchiver(coll, st)
	a.now = func() time.Time { return taken }
	require.NoError(t, a.Archive(context.Background(), ReasonLogout))
	coll.AssertExpectations(t)
}

func TestArchiver_ArchiveError(t *testing.T) {
	coll := new(MockSnapshotCollection)
	coll.On("InsertSnapshot", mock.Anything, mock.Anything).Return(errors.New("not primary"))

	err := NewArchiver(coll, store.NewSeeded()).Archive(context.Background(), ReasonShutdown)
	assert.EqualError(t, err, "not primary")
}

// Integration test (requires running MongoDB)
func TestInsertSnapshot_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := ConnectMongo(ctx, uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	coll := NewSnapshotCollection(client, os.Getenv("MONGO_DB"))
	err = NewArchiver(coll, store.NewSeeded()).Archive(ctx, ReasonShutdown)
	assert.NoError(t, err)
}
