package bot

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"convertbot/internal/export"
	"convertbot/internal/staging"
	"convertbot/internal/storage"
)

// exportDatabase delivers a copy of the store. Backends that can snapshot
// their file send it as is; the rest send a JSON dump of every table.
func (b *Bot) exportDatabase(ctx context.Context, chatID int64) {
	if snap, ok := b.db.(storage.Snapshotter); ok {
		output := staging.TempName("snapshot", ".db")
		if path, onDisk := b.staging.RealPath(output); onDisk {
			err := b.deliverSnapshot(ctx, snap, chatID, output, path)
			if err == nil {
				return
			}
			b.logger.Error("Failed to export database snapshot", zap.Error(err))
			b.reply(chatID, "Could not export the database. Please try again.")
			return
		}
	}

	output := staging.TempName("snapshot", ".json")
	err := b.produce(chatID, output, "database.json", func(w io.Writer) error {
		snap, err := export.Collect(ctx, b.db)
		if err != nil {
			return err
		}
		return export.WriteJSON(w, snap)
	})
	if err != nil {
		b.logger.Error("Failed to export database as JSON", zap.Error(err))
		b.reply(chatID, "Could not export the database. Please try again.")
	}
}

func (b *Bot) deliverSnapshot(ctx context.Context, snap storage.Snapshotter, chatID int64, output, path string) error {
	defer func() {
		if err := b.staging.Remove(output); err != nil {
			b.logger.Warn("Failed to remove snapshot", zap.Error(err), zap.String("file", output))
		}
	}()

	if err := snap.Snapshot(ctx, path); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return b.sendStagedFile(chatID, output, "database.db", "Database snapshot")
}

// exportUsers delivers the user directory as a spreadsheet
func (b *Bot) exportUsers(ctx context.Context, chatID int64) {
	users, err := b.db.ListUsers(ctx)
	if err != nil {
		b.logger.Error("Failed to list users for export", zap.Error(err))
		b.reply(chatID, "Could not export users. Please try again.")
		return
	}

	output := staging.TempName("users", ".xlsx")
	err = b.produce(chatID, output, "users.xlsx", func(w io.Writer) error {
		return export.WriteUsersXLSX(w, users)
	})
	if err != nil {
		b.logger.Error("Failed to export users", zap.Error(err))
		b.reply(chatID, "Could not export users. Please try again.")
		return
	}

	b.logger.Info("Users exported", zap.Int("users", len(users)))
}
