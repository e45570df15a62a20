package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore mantiene las sesiones de servidor del login por sesion.
// El id de sesion viaja en una cookie; el estado vive aqui.
type SessionStore interface {
	Create(userID string, ttl time.Duration) (string, error)
	Get(sessionID string) (string, bool, error)
	Delete(sessionID string) error
}

type memorySessionStore struct {
	mu    sync.Mutex
	items map[string]sessionEntry
}

type sessionEntry struct {
	userID    string
	expiresAt time.Time
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		items: make(map[string]sessionEntry),
	}
}

func (s *memorySessionStore) Create(userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sid := uuid.NewString()
	s.items[sid] = sessionEntry{
		userID:    userID,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return sid, nil
}

func (s *memorySessionStore) Get(sessionID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[sessionID]
	if !ok {
		return "", false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, sessionID)
		return "", false, nil
	}
	return entry.userID, true, nil
}

func (s *memorySessionStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, sessionID)
	return nil
}

type redisSessionStore struct {
	client *redis.Client
	prefix string
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client: client,
		prefix: "auth:session:",
	}
}

func (s *redisSessionStore) Create(userID string, ttl time.Duration) (string, error) {
	sid := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := s.client.Set(ctx, s.prefix+sid, userID, ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

func (s *redisSessionStore) Get(sessionID string) (string, bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	userID, err := s.client.Get(ctx, s.prefix+sessionID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

func (s *redisSessionStore) Delete(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
