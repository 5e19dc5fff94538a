package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-jobscout/internal/models"
	"go-jobscout/internal/runs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func (f *fakeConn) Drain() error { return nil }

func finishedRun() *runs.Run {
	done := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &runs.Run{
		ID:     "run-1",
		Query:  models.SearchQuery{Keyword: "go", Kind: models.KindJob, MaxPages: 3},
		Status: runs.StatusCompleted,
		Result: &models.RunResult{
			Records:        []models.ListingRecord{{URL: "https://x.example/1"}, {URL: "https://x.example/2"}},
			PagesProcessed: 3,
			SkippedPages:   []int{2},
		},
		ExportPath: "downloads/jobs_go_any.xlsx",
		FinishedAt: &done,
	}
}

func TestPublisher_Notify(t *testing.T) {
	c := &fakeConn{}
	p := &Publisher{conn: c, logger: zap.NewNop()}

	require.NoError(t, p.Notify(context.Background(), finishedRun()))
	assert.Equal(t, "listings.run.completed", c.subject)

	var ev RunEvent
	require.NoError(t, json.Unmarshal(c.data, &ev))
	assert.Equal(t, "run-1", ev.RunID)
	assert.Equal(t, 2, ev.Records)
	assert.Equal(t, []int{2}, ev.SkippedPages)
	assert.Equal(t, "downloads/jobs_go_any.xlsx", ev.ExportPath)
}

func TestPublisher_NotifyError(t *testing.T) {
	p := &Publisher{conn: &fakeConn{err: errors.New("nats down")}, logger: zap.NewNop()}
	assert.Error(t, p.Notify(context.Background(), finishedRun()))
}

func TestNewRunEvent_FailedRunWithoutResult(t *testing.T) {
	ev := NewRunEvent(&runs.Run{ID: "r", Status: runs.StatusFailed, Error: "boom"})
	assert.Equal(t, 0, ev.Records)
	assert.Equal(t, []int{}, ev.SkippedPages)
	assert.Equal(t, "boom", ev.Error)
}
