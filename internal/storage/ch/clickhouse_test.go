package ch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clickhouseTC "github.com/testcontainers/testcontainers-go/modules/clickhouse"

	"convertbot/internal/models"
	"convertbot/internal/storage"
)

var _ storage.Storage = (*ClickHouseDB)(nil)

// runMigrations manually creates the schema from migrations/clickhouse
func runMigrations(ctx context.Context, db *ClickHouseDB) error {
	// Drop existing tables
	_ = db.conn.Exec(ctx, "DROP TABLE IF EXISTS users")
	_ = db.conn.Exec(ctx, "DROP TABLE IF EXISTS status")
	_ = db.conn.Exec(ctx, "DROP TABLE IF EXISTS channels")

	err := db.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			user_id Int64,
			full_name String,
			username String
		) ENGINE = ReplacingMergeTree()
		ORDER BY user_id
	`)
	if err != nil {
		return err
	}

	err = db.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS status (
			id UInt8,
			active Int64,
			block Int64,
			updated_at DateTime64(3)
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY id
	`)
	if err != nil {
		return err
	}

	return db.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS channels (
			id Int64,
			name String,
			channel_id String,
			link String
		) ENGINE = MergeTree()
		ORDER BY id
	`)
}

// setupTestDB creates a test ClickHouse instance using testcontainers
func setupTestDB(t *testing.T) (*ClickHouseDB, func()) {
	ctx := context.Background()

	clickhouseContainer, err := clickhouseTC.Run(ctx,
		"clickhouse/clickhouse-server:24.3.3.102-alpine",
		clickhouseTC.WithUsername("default"),
		clickhouseTC.WithPassword(""),
		clickhouseTC.WithDatabase("default"),
	)
	require.NoError(t, err, "Failed to start ClickHouse container")

	host, err := clickhouseContainer.Host(ctx)
	require.NoError(t, err)

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	db, err := NewClickHouseDB(host, port.Int(), "default", "default", "", false)
	require.NoError(t, err, "Failed to connect to ClickHouse")

	// Run migrations manually (goose doesn't work well with ClickHouse in tests)
	err = runMigrations(ctx, db)
	require.NoError(t, err, "Failed to run migrations")

	cleanup := func() {
		db.Close()
		clickhouseContainer.Terminate(ctx)
	}

	return db, cleanup
}

// TestClickHouseDB_Users tests user registration and lookup
func TestClickHouseDB_Users(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, ok, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.AddUser(ctx, models.User{ID: 200, FullName: "Bob", Username: "bob"}))
	require.NoError(t, db.AddUser(ctx, models.User{ID: 100, FullName: "Alice"}))

	user, ok, err := db.GetUser(ctx, 200)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bob", user.FullName)
	assert.Equal(t, "bob", user.Username)

	count, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(100), users[0].ID)
	assert.Equal(t, int64(200), users[1].ID)
}

// TestClickHouseDB_Channels tests the channel registry
func TestClickHouseDB_Channels(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	a, err := db.AddChannel(ctx, "ChannelA", "-100", "https://t.me/a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	b, err := db.AddChannel(ctx, "ChannelB", "-200", "https://t.me/b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ID)

	found, err := db.DeleteChannelByName(ctx, "Unknown")
	require.NoError(t, err)
	assert.False(t, found)

	channels, err := db.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "ChannelA", channels[0].Name)
	assert.Equal(t, "ChannelB", channels[1].Name)

	found, err = db.DeleteChannelByName(ctx, "ChannelA")
	require.NoError(t, err)
	assert.True(t, found)

	channels, err = db.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "ChannelB", channels[0].Name)
}

// TestClickHouseDB_Status tests the singleton status row
func TestClickHouseDB_Status(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, ok, err := db.GetStatus(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.SetActive(ctx, 4))
	require.NoError(t, db.SetBlocked(ctx, 1))

	status, ok, err := db.GetStatus(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.Status{Active: 4, Blocked: 1}, status)
}
