package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"replacementGame/domain"
)

type sessionEntry struct {
	session   *domain.GameSession
	expiresAt time.Time
}

// SessionRepository keeps game sessions in process memory. Expired entries
// are hidden from Get immediately and removed by Sweep.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.GameSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok || !r.now().Before(entry.expiresAt) {
		return nil, domain.ErrSessionNotFound
	}

	return entry.session.Clone(), nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.GameSession) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	r.sessions[session.ID] = sessionEntry{
		session:   session.Clone(),
		expiresAt: r.now().Add(r.ttl),
	}
	r.mu.Unlock()

	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (r *SessionRepository) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.sessions {
		if !now.Before(entry.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}

	return removed
}

func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
