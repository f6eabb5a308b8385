package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"replacementGame/domain"

	"github.com/redis/go-redis/v9"
)

type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	// key format: "game:session:{session_id}"
	return fmt.Sprintf("game:session:%s", id)
}

// Save stores the session and restarts its TTL.
func (r *SessionRepository) Save(ctx context.Context, session *domain.GameSession) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal game session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(session.ID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store game session in Redis: %w", err)
	}

	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.GameSession, error) {
	val, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get game session from Redis: %w", err)
	}

	var session domain.GameSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game session: %w", err)
	}
	if session.Selections == nil {
		session.Selections = map[string]string{}
	}

	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete game session: %w", err)
	}

	return nil
}
