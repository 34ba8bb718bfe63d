package session

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps sessions in process memory; they are lost on restart
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*Session)}
}

// get returns the live session, creating it on first use. Caller holds mu.
func (m *MemoryStore) get(userID int64) *Session {
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{}
		m.sessions[userID] = s
	}
	return s
}

func snapshot(s *Session) Session {
	return Session{
		Images:          slices.Clone(s.Images),
		Documents:       slices.Clone(s.Documents),
		PromptMessageID: s.PromptMessageID,
		Welcomed:        s.Welcomed,
	}
}

func (m *MemoryStore) Get(ctx context.Context, userID int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot(m.get(userID)), nil
}

func (m *MemoryStore) AddImage(ctx context.Context, userID int64, name string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(userID)
	s.Images = append(s.Images, name)
	return snapshot(s), nil
}

func (m *MemoryStore) AddDocument(ctx context.Context, userID int64, name string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(userID)
	s.Documents = append(s.Documents, name)
	return snapshot(s), nil
}

func (m *MemoryStore) SetPrompt(ctx context.Context, userID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(userID).PromptMessageID = messageID
	return nil
}

func (m *MemoryStore) ClearImages(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(userID)
	s.Images = nil
	s.PromptMessageID = 0
	return nil
}

func (m *MemoryStore) ClearFiles(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(userID)
	s.Images = nil
	s.Documents = nil
	s.PromptMessageID = 0
	return nil
}

func (m *MemoryStore) MarkWelcomed(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(userID).Welcomed = true
	return nil
}
