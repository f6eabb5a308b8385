package game

import (
	"context"
	"errors"
	"math"
	"time"

	"replacementGame/domain"
	"replacementGame/pkg/logger"
	"replacementGame/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	defaultScoringConcurrency = 4
	minScore                  = 0
	maxScore                  = 100
)

var errNonFiniteScore = errors.New("scoring service returned a non-finite score")

type ScoreClient interface {
	PredictScore(ctx context.Context, req domain.ScoreRequest) (float64, error)
}

// FeedbackSink accepts feedback entries without blocking the caller.
type FeedbackSink interface {
	Dispatch(entry domain.FeedbackEntry) bool
}

type Scorer struct {
	client      ScoreClient
	feedback    FeedbackSink
	concurrency int
	now         func() time.Time
}

func NewScorer(client ScoreClient, feedback FeedbackSink, concurrency int) *Scorer {
	if concurrency <= 0 {
		concurrency = defaultScoringConcurrency
	}

	return &Scorer{
		client:      client,
		feedback:    feedback,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Score computes the submission result for a round and the user's selections.
//
// Every unavailable cart item gets exactly one outcome, in cart order.
// Resolved pairs are scored concurrently with at most s.concurrency calls in
// flight; a failing pair is recorded as failed and never affects the others.
// The aggregate is the rounded mean over scored pairs, or 0 when none scored.
func (s *Scorer) Score(ctx context.Context, userID string, round *domain.Round, selections map[string]string) domain.SubmissionResult {
	unavailable := round.UnavailableItems()
	outcomes := make([]domain.ScoreOutcome, len(unavailable))

	// plain Group, not WithContext: one pair failing must not cancel the rest
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, original := range unavailable {
		outcomes[i].OriginalID = original.ID

		selectedID := selections[original.ID]
		if selectedID == "" {
			outcomes[i].Status = domain.OutcomeSkippedNoSelection
			continue
		}
		outcomes[i].ReplacementID = selectedID

		chosen, ok := round.Candidate(original.ID, selectedID)
		if !ok {
			outcomes[i].Status = domain.OutcomeSkippedUnresolved
			continue
		}

		i, original := i, original
		g.Go(func() error {
			outcomes[i] = s.scorePair(ctx, userID, original, chosen)
			return nil
		})
	}
	_ = g.Wait()

	return s.aggregate(outcomes)
}

func (s *Scorer) scorePair(ctx context.Context, userID string, original, chosen domain.Item) domain.ScoreOutcome {
	out := domain.ScoreOutcome{
		OriginalID:    original.ID,
		ReplacementID: chosen.ID,
	}

	req := domain.NewScoreRequest(original, chosen)

	predicted, err := s.client.PredictScore(ctx, req)
	if err == nil && (math.IsNaN(predicted) || math.IsInf(predicted, 0)) {
		err = errNonFiniteScore
	}
	if err != nil {
		logger.Warn("prediction failed",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", userID,
			"original_id", original.ID,
			"replacement_id", chosen.ID,
			"error", err,
		)
		out.Status = domain.OutcomeFailed
		out.Reason = err.Error()
		return out
	}

	out.Status = domain.OutcomeScored
	out.Score = clampScore(predicted)

	if s.feedback != nil {
		s.feedback.Dispatch(domain.NewFeedbackEntry(userID, req, predicted))
	}

	return out
}

func (s *Scorer) aggregate(outcomes []domain.ScoreOutcome) domain.SubmissionResult {
	res := domain.SubmissionResult{
		Outcomes:    outcomes,
		SubmittedAt: s.now(),
	}

	// summed in cart order so the total does not depend on completion order
	var sum float64
	for _, o := range outcomes {
		metrics.ScoreOutcomes.WithLabelValues(string(o.Status)).Inc()

		switch o.Status {
		case domain.OutcomeScored:
			sum += o.Score
			res.Scored++
		case domain.OutcomeFailed:
			res.Failed++
		default:
			res.Skipped++
		}
	}

	if res.Scored > 0 {
		res.Score = int(math.Round(clampScore(sum / float64(res.Scored))))
	}

	return res
}

func clampScore(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}
