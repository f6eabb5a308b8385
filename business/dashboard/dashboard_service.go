package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"replacementGame/domain"
	"replacementGame/pkg/logger"
)

const EmptyMessage = "No retrain logs yet"

type RetrainLogReader interface {
	RetrainLogs(ctx context.Context) ([]domain.RetrainLog, error)
}

// Point is a chart sample with Y scaled into [0,1] against the series range.
type Point struct {
	Label string
	Value float64
	Y     float64
}

type Series struct {
	Name   string
	Min    float64
	Max    float64
	Points []Point
}

type Row struct {
	Time    string
	Samples int
	MSE     string
	R2      string
}

// View is everything the dashboard page renders. When Empty is set only
// the placeholder message is shown.
type View struct {
	Empty   bool
	Message string
	R2      Series
	MSE     Series
	Rows    []Row
	Logs    []domain.RetrainLog
}

type Service struct {
	logs RetrainLogReader
	loc  *time.Location
}

func NewService(logs RetrainLogReader) *Service {
	return &Service{logs: logs, loc: time.Local}
}

// Load fetches the retrain history once. A failed fetch is logged and
// rendered as an empty history; there is no retry.
func (s *Service) Load(ctx context.Context) View {
	logs, err := s.logs.RetrainLogs(ctx)
	if err != nil {
		logger.Error("Failed to fetch retrain logs", "error", err)
		logs = nil
	}

	return BuildView(logs, s.loc)
}

func BuildView(logs []domain.RetrainLog, loc *time.Location) View {
	if len(logs) == 0 {
		return View{Empty: true, Message: EmptyMessage}
	}

	v := View{
		R2:   Series{Name: "R² Score", Min: 0, Max: 1},
		MSE:  Series{Name: "MSE", Min: 0},
		Rows: make([]Row, 0, len(logs)),
		Logs: logs,
	}

	for _, l := range logs {
		if l.MSE > v.MSE.Max {
			v.MSE.Max = l.MSE
		}
	}
	if v.MSE.Max <= 0 {
		v.MSE.Max = 1
	}

	for _, l := range logs {
		label := FormatTimestamp(l.Timestamp, loc)

		v.R2.Points = append(v.R2.Points, Point{Label: label, Value: l.R2, Y: clamp01(l.R2)})
		v.MSE.Points = append(v.MSE.Points, Point{Label: label, Value: l.MSE, Y: clamp01(l.MSE / v.MSE.Max)})

		v.Rows = append(v.Rows, Row{
			Time:    label,
			Samples: l.NumSamples,
			MSE:     fmt.Sprintf("%.2f", l.MSE),
			R2:      fmt.Sprintf("%.2f", l.R2),
		})
	}

	return v
}

// the service writes Python isoformat timestamps, usually without a zone
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// FormatTimestamp renders a log timestamp for humans, or returns it
// unchanged when it cannot be parsed.
func FormatTimestamp(raw string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc).Format("Jan 2, 2006 15:04:05")
		}
	}
	return raw
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
