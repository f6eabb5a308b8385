package game

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"replacementGame/domain"
	"replacementGame/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrRoundNotLoaded     = errors.New("round failed to load")
	ErrAlreadySubmitted   = errors.New("round already submitted")
	ErrNotUnavailable     = errors.New("item is not an unavailable cart item")
	ErrUnknownReplacement = errors.New("replacement is not a candidate for this item")
)

type RoundFetcher interface {
	FetchGameRound(ctx context.Context) (*domain.Round, error)
}

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.GameSession, error)
	Save(ctx context.Context, session *domain.GameSession) error
	Delete(ctx context.Context, id string) error
}

const sessionLockStripes = 64

// Service drives a game session from round load to submission.
type Service struct {
	rounds   RoundFetcher
	sessions SessionRepository
	scorer   *Scorer
	newID    func() string
	now      func() time.Time

	locks [sessionLockStripes]sync.Mutex
}

func NewService(rounds RoundFetcher, sessions SessionRepository, scorer *Scorer) *Service {
	return &Service{
		rounds:   rounds,
		sessions: sessions,
		scorer:   scorer,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// lock serializes operations on one session id.
func (s *Service) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &s.locks[h.Sum32()%sessionLockStripes]
	mu.Lock()
	return mu.Unlock
}

// Start creates a session with a freshly fetched round. A failed fetch is
// not an error here: the session is stored in its terminal failed-to-load
// state and there is no retry.
func (s *Service) Start(ctx context.Context, userID string) (*domain.GameSession, error) {
	session := &domain.GameSession{
		ID:         s.newID(),
		UserID:     userID,
		Selections: map[string]string{},
		CreatedAt:  s.now(),
	}

	round, err := s.rounds.FetchGameRound(ctx)
	if err != nil {
		logger.Error("Failed to fetch game round",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", userID,
			"error", err,
			"cause", errors.Unwrap(err),
		)
		session.LoadFailed = true
	} else {
		session.Round = round
		logger.Debug("game round loaded",
			"trace_id", TraceIDFromContext(ctx),
			"session_id", session.ID,
			"cart_size", len(round.Cart),
			"unavailable", len(round.UnavailableItems()),
		)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return session, nil
}

func (s *Service) Session(ctx context.Context, id string) (*domain.GameSession, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	return s.sessions.Get(ctx, id)
}

// Select records (or overwrites) the replacement chosen for an unavailable item.
func (s *Service) Select(ctx context.Context, id, unavailableID, replacementID string) (*domain.GameSession, error) {
	unlock := s.lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.LoadFailed || session.Round == nil {
		return nil, ErrRoundNotLoaded
	}
	if session.Submitted {
		return nil, ErrAlreadySubmitted
	}

	item, ok := session.Round.CartItem(unavailableID)
	if !ok || !item.Unavailable {
		return nil, ErrNotUnavailable
	}
	if _, ok := session.Round.Candidate(unavailableID, replacementID); !ok {
		return nil, ErrUnknownReplacement
	}

	if session.Selections == nil {
		session.Selections = map[string]string{}
	}
	session.Selections[unavailableID] = replacementID

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return session, nil
}

// Submit scores the session once. Later calls return the stored result;
// playing again means starting a new session.
//
// A submission cannot be aborted once started: ctx cancellation is ignored
// and the result is recorded even if the caller goes away. Outbound calls
// are still bounded by the client timeout.
func (s *Service) Submit(ctx context.Context, id string) (*domain.GameSession, error) {
	ctx = context.WithoutCancel(ctx)

	unlock := s.lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.LoadFailed || session.Round == nil {
		return nil, ErrRoundNotLoaded
	}
	if session.Submitted {
		return session, nil
	}

	result := s.scorer.Score(ctx, session.UserID, session.Round, session.SelectionsCopy())
	session.Submitted = true
	session.Result = &result

	logger.Info("round submitted",
		"trace_id", TraceIDFromContext(ctx),
		"session_id", session.ID,
		"user_id", session.UserID,
		"score", result.Score,
		"scored", result.Scored,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return session, nil
}
