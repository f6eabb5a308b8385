package domain

import (
	"errors"
	"time"
)

// GameSession holds one user's round, choices and result.
// Round is nil when LoadFailed is set.
type GameSession struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Round      *Round            `json:"round,omitempty"`
	LoadFailed bool              `json:"load_failed"`
	Selections map[string]string `json:"selections"`
	Submitted  bool              `json:"submitted"`
	Result     *SubmissionResult `json:"result,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// SelectionsCopy returns a snapshot safe to hand to concurrent readers.
func (s *GameSession) SelectionsCopy() map[string]string {
	out := make(map[string]string, len(s.Selections))
	for k, v := range s.Selections {
		out[k] = v
	}
	return out
}

var ErrSessionNotFound = errors.New("game session not found")

// Clone copies the mutable parts of the session. Round and Result are
// never modified after they are set and are shared.
func (s *GameSession) Clone() *GameSession {
	c := *s
	c.Selections = s.SelectionsCopy()
	return &c
}
