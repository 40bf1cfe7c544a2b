// Package session stores login sessions in Redis so they survive
// restarts and are shared across replicas.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// keyPrefix shares the "games:" namespace with the listing cache.
const keyPrefix = "games:session:"

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Session is the state stored per login. ExpiresAt duplicates the Redis
// TTL so expiry also holds against a server whose clock ran ahead of
// the Redis one.
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager reads and writes sessions under a fixed expiry.
type Manager struct {
	redis  *redis.Client
	expiry time.Duration
}

func NewManager(redisClient *redis.Client, expiry time.Duration) *Manager {
	return &Manager{
		redis:  redisClient,
		expiry: expiry,
	}
}

// Create stores s under a fresh random ID and returns the ID. The
// manager stamps CreatedAt and ExpiresAt; any values the caller set are
// overwritten.
func (m *Manager) Create(ctx context.Context, s Session) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	s.CreatedAt = now
	s.ExpiresAt = now.Add(m.expiry)

	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := m.redis.Set(ctx, keyPrefix+id, data, m.expiry).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return id, nil
}

// Get returns the session for id, deleting it when it has outlived its
// own ExpiresAt even if the Redis TTL has not fired yet.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	data, err := m.redis.Get(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(s.ExpiresAt) {
		m.Delete(ctx, id)
		return nil, ErrExpired
	}
	return &s, nil
}

// Delete removes the session for id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.redis.Del(ctx, keyPrefix+id).Err()
}

// Refresh resets the Redis TTL for id, sliding the session window. The
// ExpiresAt stamp inside the payload is left alone.
func (m *Manager) Refresh(ctx context.Context, id string) error {
	return m.redis.Expire(ctx, keyPrefix+id, m.expiry).Err()
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
