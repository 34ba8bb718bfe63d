package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"convertbot/internal/models"
	"convertbot/internal/storage"
)

// Snapshot is a portable dump of the three tables
type Snapshot struct {
	TakenAt  time.Time        `json:"taken_at"`
	Users    []models.User    `json:"users"`
	Channels []models.Channel `json:"channels"`
	Status   *models.Status   `json:"status,omitempty"`
}

// Collect reads every table from db
func Collect(ctx context.Context, db storage.Storage) (Snapshot, error) {
	users, err := db.ListUsers(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	channels, err := db.ListChannels(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	status, ok, err := db.GetStatus(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		TakenAt:  time.Now().UTC(),
		Users:    users,
		Channels: channels,
	}
	if snap.Users == nil {
		snap.Users = []models.User{}
	}
	if snap.Channels == nil {
		snap.Channels = []models.Channel{}
	}
	if ok {
		snap.Status = &status
	}
	return snap, nil
}

// WriteJSON writes the snapshot as indented JSON
func WriteJSON(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
