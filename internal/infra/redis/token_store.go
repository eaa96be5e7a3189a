package redis

import (
	"context"
	"fmt"
	"time"

	"physical-ai-textbook/internal/domain/ports/repository"
)

var _ repository.TokenStore = (*TokenStore)(nil)

// TokenStore keeps the session token under a single well-known key, for
// profiles shared between machines.
type TokenStore struct {
	client RedisClient
	key    string
	ttl    time.Duration
}

func NewTokenStore(client RedisClient, key string, ttl time.Duration) *TokenStore {
	if key == "" {
		key = "textbook:auth_token"
	}
	return &TokenStore{client: client, key: key, ttl: ttl}
}

func (s *TokenStore) Get(ctx context.Context) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key)
	if IsNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get token: %w", err)
	}
	return v, v != "", nil
}

func (s *TokenStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}
