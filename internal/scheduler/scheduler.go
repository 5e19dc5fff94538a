// Package scheduler submits configured searches on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"go-jobscout/internal/config"
	"go-jobscout/internal/models"
	"go-jobscout/internal/runs"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Submitter interface {
	Submit(ctx context.Context, q models.SearchQuery) (*runs.Run, error)
}

// Scheduler wraps robfig/cron. Each entry submits one run per tick; the run
// manager decides when it actually executes.
type Scheduler struct {
	cron      *cron.Cron
	submitter Submitter
	log       *zap.Logger
}

func New(submitter Submitter, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		submitter: submitter,
		log:       log,
	}
}

// QueryFor turns a configured schedule into a validated search query.
func QueryFor(s config.Schedule) (models.SearchQuery, error) {
	kind, err := models.ParseListingKind(s.Kind)
	if err != nil {
		return models.SearchQuery{}, err
	}
	q := models.SearchQuery{
		Keyword:  s.Keyword,
		City:     s.City,
		Kind:     kind,
		MaxPages: s.MaxPages,
	}
	if err := q.Validate(); err != nil {
		return models.SearchQuery{}, err
	}
	return q, nil
}

// Add registers every schedule. An invalid cron expression or query fails
// the whole call so a bad config is caught at startup.
func (s *Scheduler) Add(ctx context.Context, schedules []config.Schedule) error {
	for i, sch := range schedules {
		q, err := QueryFor(sch)
		if err != nil {
			return fmt.Errorf("schedule %d: %w", i, err)
		}
		if _, err := s.cron.AddFunc(sch.Cron, func() { s.submit(ctx, q) }); err != nil {
			return fmt.Errorf("schedule %d: cron %q: %w", i, sch.Cron, err)
		}
		s.log.Info("⏰ schedule registered",
			zap.String("cron", sch.Cron),
			zap.String("keyword", q.Keyword),
			zap.String("city", q.City),
			zap.String("kind", string(q.Kind)),
		)
	}
	return nil
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("⏰ scheduler started", zap.Int("entries", s.Len()))
}

// Stop halts the cron loop. Runs already submitted are left to the manager.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("⏰ scheduler stopped")
}

func (s *Scheduler) submit(ctx context.Context, q models.SearchQuery) {
	run, err := s.submitter.Submit(ctx, q)
	if err != nil {
		s.log.Error("❌ scheduled run not submitted", zap.String("keyword", q.Keyword), zap.Error(err))
		return
	}
	s.log.Info("📅 scheduled run submitted", zap.String("run_id", run.ID), zap.String("keyword", q.Keyword))
}
