package ch

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"convertbot/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize is a no-op - tables are managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	// Tables are managed via cmd/migrate (see migrations/clickhouse)
	return nil
}

// AddUser registers a user
func (db *ClickHouseDB) AddUser(ctx context.Context, user models.User) error {
	err := db.conn.Exec(ctx, `INSERT INTO users (user_id, full_name, username) VALUES (?, ?, ?)`,
		user.ID, user.FullName, user.Username)
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	return nil
}

// GetUser looks up a user by ID
func (db *ClickHouseDB) GetUser(ctx context.Context, id int64) (models.User, bool, error) {
	var user models.User
	err := db.conn.QueryRow(ctx, `SELECT user_id, full_name, username FROM users FINAL WHERE user_id = ?`, id).
		Scan(&user.ID, &user.FullName, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("failed to get user: %w", err)
	}
	return user, true, nil
}

// CountUsers returns the number of registered users
func (db *ClickHouseDB) CountUsers(ctx context.Context) (int, error) {
	var count uint64
	if err := db.conn.QueryRow(ctx, `SELECT count() FROM users FINAL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(count), nil
}

// ListUsers returns all users ordered by ID
func (db *ClickHouseDB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.conn.Query(ctx, `SELECT user_id, full_name, username FROM users FINAL ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.FullName, &user.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// AddChannel appends a channel with the next free ID
func (db *ClickHouseDB) AddChannel(ctx context.Context, name, chatID, link string) (models.Channel, error) {
	// ClickHouse has no auto-increment; a single bot instance owns the table.
	var maxID int64
	if err := db.conn.QueryRow(ctx, `SELECT max(id) FROM channels`).Scan(&maxID); err != nil {
		return models.Channel{}, fmt.Errorf("failed to allocate channel id: %w", err)
	}

	channel := models.Channel{ID: maxID + 1, Name: name, ChatID: chatID, Link: link}
	err := db.conn.Exec(ctx, `INSERT INTO channels (id, name, channel_id, link) VALUES (?, ?, ?, ?)`,
		channel.ID, channel.Name, channel.ChatID, channel.Link)
	if err != nil {
		return models.Channel{}, fmt.Errorf("failed to add channel: %w", err)
	}
	return channel, nil
}

// ListChannels returns the registry ordered by ID
func (db *ClickHouseDB) ListChannels(ctx context.Context) ([]models.Channel, error) {
	rows, err := db.conn.Query(ctx, `SELECT id, name, channel_id, link FROM channels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var channel models.Channel
		if err := rows.Scan(&channel.ID, &channel.Name, &channel.ChatID, &channel.Link); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

// DeleteChannelByName removes the oldest channel with the given name
func (db *ClickHouseDB) DeleteChannelByName(ctx context.Context, name string) (bool, error) {
	var id int64
	err := db.conn.QueryRow(ctx, `SELECT id FROM channels WHERE name = ? ORDER BY id LIMIT 1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find channel: %w", err)
	}

	if err := db.conn.Exec(ctx, `DELETE FROM channels WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("failed to delete channel: %w", err)
	}
	return true, nil
}

// GetStatus returns the latest status row
func (db *ClickHouseDB) GetStatus(ctx context.Context) (models.Status, bool, error) {
	var active, block int64
	err := db.conn.QueryRow(ctx, `SELECT active, block FROM status FINAL WHERE id = 1`).Scan(&active, &block)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Status{}, false, nil
	}
	if err != nil {
		return models.Status{}, false, fmt.Errorf("failed to get status: %w", err)
	}
	return models.Status{Active: int(active), Blocked: int(block)}, true, nil
}

// SetActive overwrites the active counter
func (db *ClickHouseDB) SetActive(ctx context.Context, active int) error {
	status, _, err := db.GetStatus(ctx)
	if err != nil {
		return err
	}
	status.Active = active
	return db.writeStatus(ctx, status)
}

// SetBlocked overwrites the blocked counter
func (db *ClickHouseDB) SetBlocked(ctx context.Context, blocked int) error {
	status, _, err := db.GetStatus(ctx)
	if err != nil {
		return err
	}
	status.Blocked = blocked
	return db.writeStatus(ctx, status)
}

// writeStatus inserts a newer version of the singleton row
func (db *ClickHouseDB) writeStatus(ctx context.Context, status models.Status) error {
	err := db.conn.Exec(ctx, `INSERT INTO status (id, active, block, updated_at) VALUES (1, ?, ?, ?)`,
		int64(status.Active), int64(status.Blocked), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
