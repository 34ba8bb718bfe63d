package stubs

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"convertbot/internal/models"
)

// MockDB is an in-memory implementation of the Storage interface for testing
type MockDB struct {
	mu            sync.RWMutex
	users         map[int64]models.User
	channels      []models.Channel
	nextChannelID int64
	status        *models.Status
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		users:         make(map[int64]models.User),
		channels:      make([]models.Channel, 0),
		nextChannelID: 1,
	}
}

// Initialize does nothing; the mock starts empty
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// AddUser registers a user; adding the same ID twice is an error
func (m *MockDB) AddUser(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.ID]; exists {
		return fmt.Errorf("failed to add user: user %d already exists", user.ID)
	}
	m.users[user.ID] = user
	return nil
}

// GetUser looks up a user by ID
func (m *MockDB) GetUser(ctx context.Context, id int64) (models.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	return user, ok, nil
}

// CountUsers returns the number of registered users
func (m *MockDB) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.users), nil
}

// ListUsers returns all users ordered by ID
func (m *MockDB) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})

	return users, nil
}

// AddChannel appends a channel to the registry
func (m *MockDB) AddChannel(ctx context.Context, name, chatID, link string) (models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	channel := models.Channel{
		ID:     m.nextChannelID,
		Name:   name,
		ChatID: chatID,
		Link:   link,
	}
	m.nextChannelID++
	m.channels = append(m.channels, channel)
	return channel, nil
}

// ListChannels returns the registry in insertion order
func (m *MockDB) ListChannels(ctx context.Context) ([]models.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	channels := make([]models.Channel, len(m.channels))
	copy(channels, m.channels)
	return channels, nil
}

// DeleteChannelByName removes the first channel with the given name
func (m *MockDB) DeleteChannelByName(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.channels {
		if c.Name == name {
			m.channels = append(m.channels[:i], m.channels[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// GetStatus returns the status row if it was ever written
func (m *MockDB) GetStatus(ctx context.Context) (models.Status, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.status == nil {
		return models.Status{}, false, nil
	}
	return *m.status, true, nil
}

// SetActive overwrites the active counter, creating the row if needed
func (m *MockDB) SetActive(ctx context.Context, active int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == nil {
		m.status = &models.Status{}
	}
	m.status.Active = active
	return nil
}

// SetBlocked overwrites the blocked counter, creating the row if needed
func (m *MockDB) SetBlocked(ctx context.Context, blocked int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == nil {
		m.status = &models.Status{}
	}
	m.status.Blocked = blocked
	return nil
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}
