package storage

import (
	"context"

	"convertbot/internal/models"
)

// Storage defines the interface for data storage operations
type Storage interface {
	// User operations
	AddUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id int64) (models.User, bool, error)
	CountUsers(ctx context.Context) (int, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// Channel operations

	// AddChannel stores a channel and returns it with its assigned ID
	AddChannel(ctx context.Context, name, chatID, link string) (models.Channel, error)
	// ListChannels returns channels in registry order (ascending ID)
	ListChannels(ctx context.Context) ([]models.Channel, error)
	// DeleteChannelByName removes the oldest channel with the given name.
	// The boolean reports whether a channel was found.
	DeleteChannelByName(ctx context.Context, name string) (bool, error)

	// Status operations

	// GetStatus returns the status row; the boolean is false until the first update
	GetStatus(ctx context.Context) (models.Status, bool, error)
	SetActive(ctx context.Context, active int) error
	SetBlocked(ctx context.Context, blocked int) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}

// Snapshotter is implemented by backends that can copy their raw store
// into a single file.
type Snapshotter interface {
	Snapshot(ctx context.Context, dst string) error
}
