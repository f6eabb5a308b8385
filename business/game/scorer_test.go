package game

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"replacementGame/domain"
	"replacementGame/internal/repository/replacement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockScoreClient struct {
	mock.Mock
}

func (m *mockScoreClient) PredictScore(ctx context.Context, req domain.ScoreRequest) (float64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(float64), args.Error(1)
}

type recordingSink struct {
	mu      sync.Mutex
	entries []domain.FeedbackEntry
}

func (r *recordingSink) Dispatch(entry domain.FeedbackEntry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return true
}

func (r *recordingSink) Entries() []domain.FeedbackEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FeedbackEntry(nil), r.entries...)
}

func fp(v float64) *float64 { return &v }

func forPair(originalID, replacementID string) any {
	return mock.MatchedBy(func(r domain.ScoreRequest) bool {
		return r.OriginalID == originalID && r.ReplacementID == replacementID
	})
}

func singleItemRound() *domain.Round {
	return &domain.Round{
		Cart: []domain.Item{{ID: "a", Title: "Oat milk", Unavailable: true, Price: fp(10), Rating: fp(4.0)}},
		Replacements: map[string][]domain.Item{
			"a": {{ID: "r1", Title: "Soy milk", Price: fp(12), Rating: fp(4.2)}},
		},
	}
}

func twoItemRound() *domain.Round {
	return &domain.Round{
		Cart: []domain.Item{
			{ID: "a", Unavailable: true, Price: fp(10), Rating: fp(4.0)},
			{ID: "b", Unavailable: false, Price: fp(3)},
			{ID: "c", Unavailable: true, Price: fp(5), Rating: fp(3.5)},
		},
		Replacements: map[string][]domain.Item{
			"a": {{ID: "r1", Price: fp(12), Rating: fp(4.2)}},
			"c": {{ID: "r2", Price: fp(6), Rating: fp(3.0)}, {ID: "r3"}},
		},
	}
}

func TestScoreSinglePair(t *testing.T) {
	client := new(mockScoreClient)
	client.On("PredictScore", mock.Anything, domain.ScoreRequest{
		OriginalPrice:     fp(10),
		ReplacementPrice:  fp(12),
		OriginalRating:    fp(4.0),
		ReplacementRating: fp(4.2),
		OriginalID:        "a",
		ReplacementID:     "r1",
	}).Return(80.0, nil).Once()
	sink := &recordingSink{}

	res := NewScorer(client, sink, 2).Score(context.Background(), "user_1", singleItemRound(), map[string]string{"a": "r1"})

	assert.Equal(t, 80, res.Score)
	assert.Equal(t, 1, res.Scored)
	assert.Zero(t, res.Failed)
	assert.Zero(t, res.Skipped)
	client.AssertExpectations(t)

	entries := sink.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.FeedbackEntry{
		UserID:            "user_1",
		OriginalID:        "a",
		ReplacementID:     "r1",
		OriginalPrice:     fp(10),
		ReplacementPrice:  fp(12),
		OriginalRating:    fp(4.0),
		ReplacementRating: fp(4.2),
		Score:             80,
	}, entries[0])
}

func TestScoreFailedPairIsExcluded(t *testing.T) {
	client := new(mockScoreClient)
	client.On("PredictScore", mock.Anything, forPair("a", "r1")).Return(90.0, nil)
	client.On("PredictScore", mock.Anything, forPair("c", "r2")).Return(0.0, errors.New("connection refused"))
	sink := &recordingSink{}

	res := NewScorer(client, sink, 4).Score(context.Background(), "user_1", twoItemRound(), map[string]string{"a": "r1", "c": "r2"})

	assert.Equal(t, 90, res.Score, "failed pair must not count toward the average")
	assert.Equal(t, 1, res.Scored)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, domain.OutcomeScored, res.Outcomes[0].Status)
	assert.Equal(t, domain.OutcomeFailed, res.Outcomes[1].Status)
	assert.Contains(t, res.Outcomes[1].Reason, "connection refused")
	assert.Len(t, sink.Entries(), 1, "feedback is only sent for scored pairs")
}

func TestScoreNoSelections(t *testing.T) {
	client := new(mockScoreClient)

	res := NewScorer(client, &recordingSink{}, 4).Score(context.Background(), "user_1", twoItemRound(), map[string]string{})

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 2, res.Skipped)
	for _, o := range res.Outcomes {
		assert.Equal(t, domain.OutcomeSkippedNoSelection, o.Status)
	}
	client.AssertNotCalled(t, "PredictScore", mock.Anything, mock.Anything)
}

func TestScoreUnresolvedSelectionIsSkipped(t *testing.T) {
	client := new(mockScoreClient)
	client.On("PredictScore", mock.Anything, forPair("a", "r1")).Return(70.0, nil)

	res := NewScorer(client, nil, 4).Score(context.Background(), "user_1", twoItemRound(), map[string]string{"a": "r1", "c": "stale"})

	assert.Equal(t, 70, res.Score)
	assert.Equal(t, domain.OutcomeSkippedUnresolved, res.Outcomes[1].Status)
	assert.Equal(t, "stale", res.Outcomes[1].ReplacementID)
	assert.Equal(t, 1, res.Skipped)
}

func TestScoreRoundsAndClamps(t *testing.T) {
	tests := []struct {
		name      string
		a, c      float64
		wantScore int
	}{
		{name: "mean rounds half up", a: 80, c: 81, wantScore: 81},
		{name: "mean rounds down", a: 80.2, c: 80.2, wantScore: 80},
		{name: "negative clamps to zero", a: -40, c: -10, wantScore: 0},
		{name: "above range clamps to hundred", a: 180, c: 100, wantScore: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mockScoreClient)
			client.On("PredictScore", mock.Anything, forPair("a", "r1")).Return(tt.a, nil)
			client.On("PredictScore", mock.Anything, forPair("c", "r2")).Return(tt.c, nil)

			res := NewScorer(client, nil, 2).Score(context.Background(), "u", twoItemRound(), map[string]string{"a": "r1", "c": "r2"})

			assert.Equal(t, tt.wantScore, res.Score)
			assert.GreaterOrEqual(t, res.Score, 0)
			assert.LessOrEqual(t, res.Score, 100)
		})
	}
}

func TestScoreNonFiniteIsFailure(t *testing.T) {
	client := new(mockScoreClient)
	client.On("PredictScore", mock.Anything, forPair("a", "r1")).Return(math.NaN(), nil)

	res := NewScorer(client, &recordingSink{}, 1).Score(context.Background(), "u", singleItemRound(), map[string]string{"a": "r1"})

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 1, res.Failed)
}

func TestScoreIsRepeatable(t *testing.T) {
	client := new(mockScoreClient)
	client.On("PredictScore", mock.Anything, forPair("a", "r1")).Return(77.4, nil)
	client.On("PredictScore", mock.Anything, forPair("c", "r2")).Return(64.9, nil)
	scorer := NewScorer(client, nil, 3)
	round := twoItemRound()
	sel := map[string]string{"a": "r1", "c": "r2"}

	first := scorer.Score(context.Background(), "u", round, sel)
	for i := 0; i < 5; i++ {
		again := scorer.Score(context.Background(), "u", round, sel)
		assert.Equal(t, first.Score, again.Score)
		assert.Equal(t, first.Outcomes, again.Outcomes)
	}
}

type slowClient struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *slowClient) PredictScore(ctx context.Context, req domain.ScoreRequest) (float64, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return 50, nil
}

func TestScoreBoundsConcurrency(t *testing.T) {
	round := &domain.Round{Replacements: map[string][]domain.Item{}}
	sel := map[string]string{}
	for _, id := range []string{"i1", "i2", "i3", "i4", "i5", "i6", "i7", "i8"} {
		round.Cart = append(round.Cart, domain.Item{ID: id, Unavailable: true})
		round.Replacements[id] = []domain.Item{{ID: id + "-r"}}
		sel[id] = id + "-r"
	}
	client := &slowClient{}

	res := NewScorer(client, nil, 3).Score(context.Background(), "u", round, sel)

	assert.Equal(t, 8, res.Scored)
	assert.Equal(t, 50, res.Score)
	assert.LessOrEqual(t, client.peak.Load(), int32(3))
	assert.Greater(t, client.peak.Load(), int32(1), "pairs should be scored concurrently")
}

func TestScoreCountsRejectedPairAsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.ScoreRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		if req.OriginalPrice == nil || req.ReplacementPrice == nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail": [{"loc": ["body", "replacement_price"], "msg": "none is not an allowed value"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"predicted_score": 90}`))
	}))
	t.Cleanup(srv.Close)

	client := replacement.NewReplacementRepository(replacement.ReplacementConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	round := twoItemRound()
	round.Replacements["c"] = []domain.Item{{ID: "r2", Rating: fp(3.0)}}

	res := NewScorer(client, nil, 2).Score(context.Background(), "u", round, map[string]string{"a": "r1", "c": "r2"})

	assert.Equal(t, 45, res.Score)
	assert.Equal(t, 2, res.Scored)
	assert.Zero(t, res.Failed)
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, domain.OutcomeScored, res.Outcomes[1].Status)
	assert.Zero(t, res.Outcomes[1].Score)
}

func TestScoreServerErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := replacement.NewReplacementRepository(replacement.ReplacementConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})

	res := NewScorer(client, nil, 1).Score(context.Background(), "u", singleItemRound(), map[string]string{"a": "r1"})

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 1, res.Failed)
	assert.Zero(t, res.Scored)
}
