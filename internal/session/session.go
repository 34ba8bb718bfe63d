// Package session keeps per-user upload state between messages.
package session

import "context"

// Session is the per-user accumulation of staged uploads
type Session struct {
	Images          []string // staging names, in upload order
	Documents       []string
	PromptMessageID int // 0 when no action prompt is on screen
	Welcomed        bool
}

// Files returns every staged file, images first
func (s Session) Files() []string {
	files := make([]string, 0, len(s.Images)+len(s.Documents))
	files = append(files, s.Images...)
	return append(files, s.Documents...)
}

// Store persists sessions for the lifetime chosen by the implementation
type Store interface {
	Get(ctx context.Context, userID int64) (Session, error)
	AddImage(ctx context.Context, userID int64, name string) (Session, error)
	AddDocument(ctx context.Context, userID int64, name string) (Session, error)
	SetPrompt(ctx context.Context, userID int64, messageID int) error
	// ClearImages empties the image list and forgets the prompt
	ClearImages(ctx context.Context, userID int64) error
	// ClearFiles empties both lists and forgets the prompt
	ClearFiles(ctx context.Context, userID int64) error
	MarkWelcomed(ctx context.Context, userID int64) error
}
