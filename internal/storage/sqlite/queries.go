package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"convertbot/internal/models"
)

// AddUser inserts a new user; the ID must not exist yet
func (d *DB) AddUser(ctx context.Context, user models.User) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO users(user_id, full_name, username) VALUES(?, ?, ?)",
		user.ID, user.FullName, user.Username)
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	return nil
}

// GetUser looks up a user by ID
func (d *DB) GetUser(ctx context.Context, id int64) (models.User, bool, error) {
	var u models.User
	err := d.sql.QueryRowContext(ctx,
		"SELECT user_id, full_name, username FROM users WHERE user_id = ?", id).
		Scan(&u.ID, &u.FullName, &u.Username)
	if err == nil {
		return u, true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	return models.User{}, false, fmt.Errorf("failed to get user: %w", err)
}

// CountUsers returns the number of registered users
func (d *DB) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// ListUsers returns every user ordered by ID
func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT user_id, full_name, username FROM users ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AddChannel inserts a channel and returns it with the assigned ID
func (d *DB) AddChannel(ctx context.Context, name, chatID, link string) (models.Channel, error) {
	res, err := d.sql.ExecContext(ctx,
		"INSERT INTO channels(name, channel_id, link) VALUES(?, ?, ?)", name, chatID, link)
	if err != nil {
		return models.Channel{}, fmt.Errorf("failed to add channel: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Channel{}, fmt.Errorf("failed to read channel id: %w", err)
	}
	return models.Channel{ID: id, Name: name, ChatID: chatID, Link: link}, nil
}

// ListChannels returns the registry ordered by ID
func (d *DB) ListChannels(ctx context.Context) ([]models.Channel, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT id, name, channel_id, link FROM channels ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var c models.Channel
		if err := rows.Scan(&c.ID, &c.Name, &c.ChatID, &c.Link); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

// DeleteChannelByName removes the oldest channel with the given name
func (d *DB) DeleteChannelByName(ctx context.Context, name string) (bool, error) {
	res, err := d.sql.ExecContext(ctx, `
DELETE FROM channels
WHERE id = (SELECT id FROM channels WHERE name = ? ORDER BY id LIMIT 1)
`, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete channel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete channel: %w", err)
	}
	return n > 0, nil
}

// GetStatus returns the singleton status row
func (d *DB) GetStatus(ctx context.Context) (models.Status, bool, error) {
	var s models.Status
	err := d.sql.QueryRowContext(ctx, "SELECT active, block FROM status WHERE id = 1").
		Scan(&s.Active, &s.Blocked)
	if err == nil {
		return s, true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.Status{}, false, nil
	}
	return models.Status{}, false, fmt.Errorf("failed to get status: %w", err)
}

// SetActive overwrites the active counter
func (d *DB) SetActive(ctx context.Context, active int) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO status(id, active) VALUES(1, ?)
ON CONFLICT(id) DO UPDATE SET active = excluded.active
`, active)
	if err != nil {
		return fmt.Errorf("failed to update active: %w", err)
	}
	return nil
}

// SetBlocked overwrites the blocked counter
func (d *DB) SetBlocked(ctx context.Context, blocked int) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO status(id, block) VALUES(1, ?)
ON CONFLICT(id) DO UPDATE SET block = excluded.block
`, blocked)
	if err != nil {
		return fmt.Errorf("failed to update block: %w", err)
	}
	return nil
}
