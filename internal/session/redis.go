package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis so they survive restarts.
// Every write refreshes the TTL of all of the user's keys.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed session store
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(userID int64, field string) string {
	return fmt.Sprintf("session:%d:%s", userID, field)
}

func keys(userID int64) []string {
	return []string{
		key(userID, "images"),
		key(userID, "documents"),
		key(userID, "prompt"),
		key(userID, "welcomed"),
	}
}

func (r *RedisStore) touch(ctx context.Context, pipe redis.Pipeliner, userID int64) {
	if r.ttl <= 0 {
		return
	}
	for _, k := range keys(userID) {
		pipe.Expire(ctx, k, r.ttl)
	}
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (Session, error) {
	pipe := r.client.Pipeline()
	images := pipe.LRange(ctx, key(userID, "images"), 0, -1)
	documents := pipe.LRange(ctx, key(userID, "documents"), 0, -1)
	prompt := pipe.Get(ctx, key(userID, "prompt"))
	welcomed := pipe.Exists(ctx, key(userID, "welcomed"))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	s := Session{
		Images:    images.Val(),
		Documents: documents.Val(),
		Welcomed:  welcomed.Val() > 0,
	}
	if len(s.Images) == 0 {
		s.Images = nil
	}
	if len(s.Documents) == 0 {
		s.Documents = nil
	}
	if id, err := prompt.Int(); err == nil {
		s.PromptMessageID = id
	}
	return s, nil
}

func (r *RedisStore) push(ctx context.Context, userID int64, field, name string) (Session, error) {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key(userID, field), name)
		r.touch(ctx, pipe, userID)
		return nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("failed to append to session: %w", err)
	}
	return r.Get(ctx, userID)
}

func (r *RedisStore) AddImage(ctx context.Context, userID int64, name string) (Session, error) {
	return r.push(ctx, userID, "images", name)
}

func (r *RedisStore) AddDocument(ctx context.Context, userID int64, name string) (Session, error) {
	return r.push(ctx, userID, "documents", name)
}

func (r *RedisStore) SetPrompt(ctx context.Context, userID int64, messageID int) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key(userID, "prompt"), messageID, r.ttl)
		r.touch(ctx, pipe, userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set prompt: %w", err)
	}
	return nil
}

func (r *RedisStore) ClearImages(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, key(userID, "images"), key(userID, "prompt")).Err(); err != nil {
		return fmt.Errorf("failed to clear images: %w", err)
	}
	return nil
}

func (r *RedisStore) ClearFiles(ctx context.Context, userID int64) error {
	err := r.client.Del(ctx, key(userID, "images"), key(userID, "documents"), key(userID, "prompt")).Err()
	if err != nil {
		return fmt.Errorf("failed to clear files: %w", err)
	}
	return nil
}

func (r *RedisStore) MarkWelcomed(ctx context.Context, userID int64) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key(userID, "welcomed"), 1, r.ttl)
		r.touch(ctx, pipe, userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mark welcomed: %w", err)
	}
	return nil
}
