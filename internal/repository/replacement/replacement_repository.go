package replacement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"replacementGame/domain"
	"replacementGame/pkg/logger"
	"replacementGame/pkg/metrics"

	"golang.org/x/time/rate"
)

const (
	endpointRound    = "generate_round"
	endpointScore    = "predict_score"
	endpointFeedback = "log_feedback"
	endpointRetrain  = "retrain_logs"

	maxErrorBody = 64 << 10
)

type ReplacementConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// RoundFetchError reports that no round could be loaded. The message is
// always the same; the cause is only reachable through Unwrap.
type RoundFetchError struct {
	StatusCode int
	Cause      error
}

func (e *RoundFetchError) Error() string {
	return "failed to fetch game round"
}

func (e *RoundFetchError) Unwrap() error {
	return e.Cause
}

// StatusError is a non-2xx answer from the replacement service. Body holds
// the start of the response body.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("replacement service %s returned status %d", e.Endpoint, e.StatusCode)
}

type ReplacementRepository struct {
	config  ReplacementConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewReplacementRepository(cfg ReplacementConfig) *ReplacementRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	if cfg.RateBurst < 1 {
		cfg.RateBurst = 1
	}

	return &ReplacementRepository{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, cfg.RateBurst),
	}
}

// FetchGameRound loads a fresh round. The payload is trusted and only normalized.
func (r *ReplacementRepository) FetchGameRound(ctx context.Context) (*domain.Round, error) {
	var round domain.Round
	if err := r.do(ctx, endpointRound, http.MethodGet, nil, &round); err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, &RoundFetchError{StatusCode: se.StatusCode, Cause: err}
		}
		return nil, &RoundFetchError{Cause: err}
	}

	round.Normalize()

	return &round, nil
}

type predictScoreResponse struct {
	PredictedScore *float64 `json:"predicted_score"`
}

// PredictScore asks the service to score one (original, replacement) pair.
// Any JSON answer counts, whatever its status: a response without
// predicted_score (a 422 for a null price, say) scores 0. Only transport
// failures and non-JSON bodies are errors.
func (r *ReplacementRepository) PredictScore(ctx context.Context, req domain.ScoreRequest) (float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("scoring rate limiter: %w", err)
	}

	var res predictScoreResponse
	if err := r.do(ctx, endpointScore, http.MethodPost, req, &res); err != nil {
		var se *StatusError
		if !errors.As(err, &se) || json.Unmarshal(se.Body, &res) != nil {
			return 0, err
		}
		logger.Warn("predict_score answered with an error status, scoring as reported",
			"status", se.StatusCode,
			"original_id", req.OriginalID,
			"replacement_id", req.ReplacementID,
		)
	}

	if res.PredictedScore == nil {
		return 0, nil
	}

	return *res.PredictedScore, nil
}

// LogFeedback records a scored pair. The response body is ignored.
func (r *ReplacementRepository) LogFeedback(ctx context.Context, entry domain.FeedbackEntry) error {
	return r.do(ctx, endpointFeedback, http.MethodPost, entry, nil)
}

type retrainLogsResponse struct {
	Logs []domain.RetrainLog `json:"logs"`
}

// RetrainLogs returns the retrain history in the order the service keeps it.
func (r *ReplacementRepository) RetrainLogs(ctx context.Context) ([]domain.RetrainLog, error) {
	var res retrainLogsResponse
	if err := r.do(ctx, endpointRetrain, http.MethodGet, nil, &res); err != nil {
		return nil, err
	}

	if res.Logs == nil {
		return []domain.RetrainLog{}, nil
	}

	return res.Logs, nil
}

func (r *ReplacementRepository) do(ctx context.Context, endpoint, method string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.ReplacementRequestLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		metrics.ReplacementRequests.WithLabelValues(endpoint, result).Inc()
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.config.BaseURL+"/"+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		_, _ = io.Copy(io.Discard, res.Body)
		return &StatusError{Endpoint: endpoint, StatusCode: res.StatusCode, Body: body}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return nil
}
