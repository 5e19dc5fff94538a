package events

import (
	"context"
	"encoding/json"
	"time"

	apperrors "go-jobscout/internal/errors"
	"go-jobscout/internal/models"
	"go-jobscout/internal/runs"
	"go-jobscout/internal/telemetry"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobscout/events")

// SubjectPrefix is followed by the terminal run status, e.g.
// "listings.run.completed".
const SubjectPrefix = "listings.run."

type RunEvent struct {
	RunID          string             `json:"run_id"`
	Status         string             `json:"status"`
	Query          models.SearchQuery `json:"query"`
	Records        int                `json:"records"`
	PagesProcessed int                `json:"pages_processed"`
	SkippedPages   []int              `json:"skipped_pages"`
	ExportPath     string             `json:"export_path,omitempty"`
	Error          string             `json:"error,omitempty"`
	FinishedAt     time.Time          `json:"finished_at"`
}

func NewRunEvent(run *runs.Run) RunEvent {
	ev := RunEvent{
		RunID:        run.ID,
		Status:       string(run.Status),
		Query:        run.Query,
		SkippedPages: []int{},
		ExportPath:   run.ExportPath,
		Error:        run.Error,
	}
	if run.FinishedAt != nil {
		ev.FinishedAt = *run.FinishedAt
	}
	if run.Result != nil {
		ev.Records = len(run.Result.Records)
		ev.PagesProcessed = run.Result.PagesProcessed
		ev.SkippedPages = run.Result.SkippedPages
	}
	return ev
}

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Publisher emits one NATS message per finished run.
type Publisher struct {
	conn   conn
	logger *zap.Logger
}

func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("jobscout"),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, apperrors.Internal("connecting to NATS", err)
	}
	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) Name() string {
	return "nats"
}

func (p *Publisher) Notify(ctx context.Context, run *runs.Run) error {
	_, span := tracer.Start(ctx, "PublishRunEvent")
	defer span.End()

	data, err := json.Marshal(NewRunEvent(run))
	if err != nil {
		span.RecordError(err)
		return apperrors.Internal("marshaling run event", err)
	}

	subject := SubjectPrefix + string(run.Status)
	span.SetAttributes(
		telemetry.String("nats.subject", subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(subject, data); err != nil {
		span.RecordError(err)
		return apperrors.Internal("publishing run event", err)
	}

	p.logger.Debug("published run event", zap.String("subject", subject), zap.String("run_id", run.ID))
	return nil
}

func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("⚠️ failed to drain NATS connection", zap.Error(err))
	}
}
