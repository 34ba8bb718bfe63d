package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convertbot/internal/models"
	"convertbot/internal/storage"
)

var _ storage.Storage = (*DB)(nil)
var _ storage.Snapshotter = (*DB)(nil)

// setupTestDB opens a migrated database in a temporary directory
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Initialize(ctx))
	return db
}

func TestDB_InitializeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Initialize(context.Background()))
}

func TestDB_Users(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, ok, err := db.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.AddUser(ctx, models.User{ID: 2, FullName: "Bob", Username: "bob"}))
	require.NoError(t, db.AddUser(ctx, models.User{ID: 1, FullName: "Alice"}))

	// Primary key rejects duplicates
	assert.Error(t, db.AddUser(ctx, models.User{ID: 1, FullName: "Again"}))

	u, ok, err := db.GetUser(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bob", u.FullName)
	assert.Equal(t, "bob", u.Username)

	count, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, "", users[0].Username)
	assert.Equal(t, int64(2), users[1].ID)
}

func TestDB_Channels(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a, err := db.AddChannel(ctx, "ChannelA", "-100", "https://t.me/a")
	require.NoError(t, err)
	b, err := db.AddChannel(ctx, "ChannelB", "@channel_b", "https://t.me/channel_b")
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)

	channels, err := db.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, a, channels[0])
	assert.Equal(t, b, channels[1])
}

func TestDB_DeleteChannelByName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.AddChannel(ctx, "Dup", "-1", "https://t.me/x")
	require.NoError(t, err)
	_, err = db.AddChannel(ctx, "Dup", "-2", "https://t.me/y")
	require.NoError(t, err)

	found, err := db.DeleteChannelByName(ctx, "Unknown")
	require.NoError(t, err)
	assert.False(t, found)

	channels, err := db.ListChannels(ctx)
	require.NoError(t, err)
	assert.Len(t, channels, 2)

	// Only one row goes per deletion
	found, err = db.DeleteChannelByName(ctx, "Dup")
	require.NoError(t, err)
	assert.True(t, found)

	channels, err = db.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "-2", channels[0].ChatID)
}

func TestDB_Status(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, ok, err := db.GetStatus(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "status row is created lazily")

	require.NoError(t, db.SetBlocked(ctx, 3))
	s, ok, err := db.GetStatus(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.Status{Active: 0, Blocked: 3}, s)

	require.NoError(t, db.SetActive(ctx, 10))
	require.NoError(t, db.SetActive(ctx, 11))
	s, _, err = db.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Status{Active: 11, Blocked: 3}, s)
}

func TestDB_Snapshot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AddUser(ctx, models.User{ID: 7, FullName: "Snap"}))

	dst := filepath.Join(t.TempDir(), "snapshot.db")
	require.NoError(t, db.Snapshot(ctx, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// The copy is a working database with the same rows
	cp, err := Open(ctx, dst)
	require.NoError(t, err)
	defer cp.Close()

	u, ok, err := cp.GetUser(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Snap", u.FullName)
}
