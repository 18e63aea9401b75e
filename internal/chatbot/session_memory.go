package chatbot

import (
	"context"
	"sync"
	"time"
)

// MemorySessionStore is an in-process session store used in development and
// tests, and as the fallback when Redis is not configured. Entries expire
// after the configured TTL, checked on read and swept periodically.
type MemorySessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	stop     chan struct{}
	once     sync.Once
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// NewMemorySessionStore creates an in-memory store with the given idle TTL.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	s := &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		stop:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Get loads the active dialogue session, or ErrSessionNotFound.
func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

// Put stores or replaces the dialogue session and refreshes its TTL.
func (s *MemorySessionStore) Put(ctx context.Context, sessionID string, session *Session) error {
	session.UpdatedAt = time.Now().UTC()
	s.mu.Lock()
	s.sessions[sessionID] = memoryEntry{
		session:   *session,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return nil
}

// Delete ends the dialogue for a session id. Deleting an absent session is a no-op.
func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Close stops the background sweeper.
func (s *MemorySessionStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemorySessionStore) sweep() {
	interval := s.ttl
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, entry := range s.sessions {
				if now.After(entry.expiresAt) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ SessionStore = (*MemorySessionStore)(nil)
