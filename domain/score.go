package domain

import "time"

// ScoreRequest is the body of POST /predict_score.
type ScoreRequest struct {
	OriginalPrice     *float64 `json:"original_price"`
	ReplacementPrice  *float64 `json:"replacement_price"`
	OriginalRating    *float64 `json:"original_rating"`
	ReplacementRating *float64 `json:"replacement_rating"`
	OriginalID        string   `json:"original_id"`
	ReplacementID     string   `json:"replacement_id"`
}

func NewScoreRequest(original, replacement Item) ScoreRequest {
	return ScoreRequest{
		OriginalPrice:     original.Price,
		ReplacementPrice:  replacement.Price,
		OriginalRating:    original.Rating,
		ReplacementRating: replacement.Rating,
		OriginalID:        original.ID,
		ReplacementID:     replacement.ID,
	}
}

// FeedbackEntry is the body of POST /log_feedback.
type FeedbackEntry struct {
	UserID            string   `json:"user_id"`
	OriginalID        string   `json:"original_id"`
	ReplacementID     string   `json:"replacement_id"`
	OriginalPrice     *float64 `json:"original_price"`
	ReplacementPrice  *float64 `json:"replacement_price"`
	OriginalRating    *float64 `json:"original_rating"`
	ReplacementRating *float64 `json:"replacement_rating"`
	Score             float64  `json:"score"`
}

func NewFeedbackEntry(userID string, req ScoreRequest, score float64) FeedbackEntry {
	return FeedbackEntry{
		UserID:            userID,
		OriginalID:        req.OriginalID,
		ReplacementID:     req.ReplacementID,
		OriginalPrice:     req.OriginalPrice,
		ReplacementPrice:  req.ReplacementPrice,
		OriginalRating:    req.OriginalRating,
		ReplacementRating: req.ReplacementRating,
		Score:             score,
	}
}

type OutcomeStatus string

const (
	OutcomeScored             OutcomeStatus = "scored"
	OutcomeSkippedNoSelection OutcomeStatus = "skipped_no_selection"
	OutcomeSkippedUnresolved  OutcomeStatus = "skipped_unresolved"
	OutcomeFailed             OutcomeStatus = "failed"
)

// ScoreOutcome is what happened to one unavailable cart item on submission.
type ScoreOutcome struct {
	OriginalID    string        `json:"original_id"`
	ReplacementID string        `json:"replacement_id,omitempty"`
	Status        OutcomeStatus `json:"status"`
	Score         float64       `json:"score"`
	Reason        string        `json:"reason,omitempty"`
}

// SubmissionResult is derived on submit and never persisted outside the session.
type SubmissionResult struct {
	Score       int            `json:"score"`
	Scored      int            `json:"scored"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	Outcomes    []ScoreOutcome `json:"outcomes"`
	SubmittedAt time.Time      `json:"submitted_at"`
}
