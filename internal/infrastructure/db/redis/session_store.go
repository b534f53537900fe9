package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// Preferences outlive idle sessions so a returning browser keeps its theme.
const preferenceTTL = 180 * 24 * time.Hour

// SessionStore keeps per-session auth tokens, OAuth states and theme
// preferences. It implements ports.TokenStore and ports.PreferenceStore.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) SaveToken(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(sessionID), token, ttl).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// LoadToken returns "" when the session has no stored token.
func (s *SessionStore) LoadToken(ctx context.Context, sessionID string) (string, error) {
	t, err := s.client.Get(ctx, tokenKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return t, nil
}

func (s *SessionStore) DeleteToken(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, tokenKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (s *SessionStore) SaveState(ctx context.Context, state, sessionID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, stateKey(state), sessionID, ttl).Err(); err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	return nil
}

// ConsumeState reads and deletes the state in one round trip.
func (s *SessionStore) ConsumeState(ctx context.Context, state string) (string, error) {
	sid, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consume oauth state: %w", err)
	}
	return sid, nil
}

// LoadTheme returns "" when no preference was saved.
func (s *SessionStore) LoadTheme(ctx context.Context, sessionID string) (domain.Theme, error) {
	v, err := s.client.Get(ctx, themeKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load theme: %w", err)
	}
	t := domain.Theme(v)
	if !t.Valid() {
		return "", nil
	}
	return t, nil
}

func (s *SessionStore) SaveTheme(ctx context.Context, sessionID string, theme domain.Theme) error {
	if err := s.client.Set(ctx, themeKey(sessionID), string(theme), preferenceTTL).Err(); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

func tokenKey(sessionID string) string { return "portal:session:" + sessionID + ":token" }
func themeKey(sessionID string) string { return "portal:session:" + sessionID + ":theme" }
func stateKey(state string) string     { return "portal:oauth_state:" + state }
