package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisSessionStore keeps dialogue sessions in Redis with a TTL, so abandoned
// dialogues are evicted instead of accumulating for the process lifetime.
type RedisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisSessionStore creates a Redis-backed session store. ttl bounds how
// long an idle dialogue survives; every write refreshes it.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisSessionStore {
	if client == nil {
		panic("chatbot: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if tracer == nil {
		tracer = otel.Tracer("kas.internal.chatbot.sessions")
	}
	return &RedisSessionStore{redis: client, ttl: ttl, tracer: tracer}
}

func sessionKey(id string) string {
	return fmt.Sprintf("chat_session:%s", id)
}

// Get loads the active dialogue session, or ErrSessionNotFound.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "chatbot.session_get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("chatbot: failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chatbot: failed to decode session: %w", err)
	}
	return &session, nil
}

// Put stores or replaces the dialogue session and refreshes its TTL.
func (s *RedisSessionStore) Put(ctx context.Context, sessionID string, session *Session) error {
	ctx, span := s.tracer.Start(ctx, "chatbot.session_put")
	defer span.End()

	session.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chatbot: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chatbot: failed to persist session: %w", err)
	}
	return nil
}

// Delete ends the dialogue for a session id. Deleting an absent session is a no-op.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "chatbot.session_delete")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chatbot: failed to delete session: %w", err)
	}
	return nil
}

var _ SessionStore = (*RedisSessionStore)(nil)
