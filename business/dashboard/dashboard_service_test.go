package dashboard

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"replacementGame/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubLogs struct {
	logs []domain.RetrainLog
	err  error
}

func (s stubLogs) RetrainLogs(ctx context.Context) ([]domain.RetrainLog, error) {
	return s.logs, s.err
}

var sampleLogs = []domain.RetrainLog{
	{Timestamp: "2025-05-02T10:00:00.123456", MSE: 12.5, R2: 0.71, NumSamples: 55},
	{Timestamp: "2025-05-01T09:30:00", MSE: 25, R2: 1.3, NumSamples: 50},
	{Timestamp: "not a time", MSE: 0, R2: -0.2, NumSamples: 5},
}

func TestLoadEmpty(t *testing.T) {
	v := NewService(stubLogs{logs: []domain.RetrainLog{}}).Load(context.Background())

	assert.True(t, v.Empty)
	assert.Equal(t, EmptyMessage, v.Message)
	assert.Empty(t, v.Rows)
	assert.Empty(t, v.R2.Points)
}

func TestLoadFailureRendersEmpty(t *testing.T) {
	v := NewService(stubLogs{err: errors.New("connection refused")}).Load(context.Background())

	assert.True(t, v.Empty)
}

func TestBuildView(t *testing.T) {
	v := BuildView(sampleLogs, time.UTC)

	require.False(t, v.Empty)
	require.Len(t, v.Rows, len(sampleLogs))

	assert.Equal(t, "May 2, 2025 10:00:00", v.Rows[0].Time)
	assert.Equal(t, "12.50", v.Rows[0].MSE)
	assert.Equal(t, "0.71", v.Rows[0].R2)
	assert.Equal(t, 55, v.Rows[0].Samples)
	assert.Equal(t, "not a time", v.Rows[2].Time)

	// R² is plotted on a fixed [0,1] axis
	assert.Equal(t, 1.0, v.R2.Max)
	assert.Equal(t, 1.0, v.R2.Points[1].Y)
	assert.Equal(t, 0.0, v.R2.Points[2].Y)
	assert.Equal(t, 1.3, v.R2.Points[1].Value)

	// MSE scales to its own maximum
	assert.Equal(t, 25.0, v.MSE.Max)
	assert.Equal(t, 0.5, v.MSE.Points[0].Y)
	assert.Equal(t, 1.0, v.MSE.Points[1].Y)
}

func TestFormatTimestampWithZone(t *testing.T) {
	assert.Equal(t, "May 1, 2025 12:00:00", FormatTimestamp("2025-05-01T10:00:00+00:00", time.FixedZone("CEST", 2*3600)))
}

func TestWriteXLSX(t *testing.T) {
	logs := append([]domain.RetrainLog(nil), sampleLogs...)
	logs[0].Features = []string{"price_diff", "rating_diff"}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, logs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(logs)+1)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "2025-05-02T10:00:00.123456", rows[1][0])
	assert.Equal(t, "55", rows[1][1])
	assert.Equal(t, "price_diff, rating_diff", rows[1][4])
}
