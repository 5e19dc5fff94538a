package runs

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "go-jobscout/internal/errors"
	"go-jobscout/internal/metrics"
	"go-jobscout/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Runner interface {
	Run(ctx context.Context, q models.SearchQuery) (*models.RunResult, error)
}

type Exporter interface {
	Export(q models.SearchQuery, result *models.RunResult) (string, error)
}

type Options struct {
	MaxConcurrent int
	RunTimeout    time.Duration
}

// Manager executes runs in the background, at most MaxConcurrent at a time.
type Manager struct {
	runner    Runner
	exporter  Exporter
	store     Store
	notifiers []Notifier
	opts      Options
	log       *zap.Logger

	sem     chan struct{}
	baseCtx context.Context
	stopAll context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	active  map[string]context.CancelFunc
	done    map[string]chan struct{}
	closing bool
}

func NewManager(runner Runner, exporter Exporter, store Store, opts Options, log *zap.Logger, notifiers ...Notifier) *Manager {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		runner:    runner,
		exporter:  exporter,
		store:     store,
		notifiers: notifiers,
		opts:      opts,
		log:       log,
		sem:       make(chan struct{}, opts.MaxConcurrent),
		baseCtx:   ctx,
		stopAll:   cancel,
		active:    make(map[string]context.CancelFunc),
		done:      make(map[string]chan struct{}),
	}
}

// Submit validates q, records a queued run and starts it in the background.
func (m *Manager) Submit(ctx context.Context, q models.SearchQuery) (*Run, error) {
	if err := q.Validate(); err != nil {
		return nil, apperrors.InvalidInput("invalid search query", err)
	}

	run := &Run{
		ID:        uuid.NewString(),
		Query:     q,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return nil, apperrors.Internal("manager is shutting down", nil)
	}
	runCtx, cancel := context.WithCancel(m.baseCtx)
	if m.opts.RunTimeout > 0 {
		runCtx, cancel = withTimeout(runCtx, cancel, m.opts.RunTimeout)
	}
	done := make(chan struct{})
	m.active[run.ID] = cancel
	m.done[run.ID] = done
	m.wg.Add(1)
	m.mu.Unlock()

	if err := m.store.Save(ctx, run); err != nil {
		m.finishBookkeeping(run.ID)
		cancel()
		close(done)
		m.wg.Done()
		return nil, apperrors.Internal("save run", err)
	}

	snapshot := *run
	go m.execute(runCtx, run, done)

	m.log.Info("📥 run submitted", zap.String("run_id", run.ID))
	return &snapshot, nil
}

// Execute submits q and blocks until the run finishes or ctx ends.
func (m *Manager) Execute(ctx context.Context, q models.SearchQuery) (*Run, error) {
	run, err := m.Submit(ctx, q)
	if err != nil {
		return nil, err
	}
	finished, err := m.Wait(ctx, run.ID)
	if err != nil {
		_ = m.Cancel(context.Background(), run.ID)
		return nil, err
	}
	return finished, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Run, error) {
	return m.store.Get(ctx, id)
}

// Wait blocks until run id is terminal. Runs not started by this process
// are returned as currently stored.
func (m *Manager) Wait(ctx context.Context, id string) (*Run, error) {
	m.mu.Lock()
	done, ok := m.done[id]
	m.mu.Unlock()

	if ok {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, apperrors.RunAborted("wait for run "+id, ctx.Err())
		}
	}
	return m.store.Get(ctx, id)
}

// Cancel stops a queued or running run. Cancelling a finished run is a no-op.
func (m *Manager) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	cancel, ok := m.active[id]
	m.mu.Unlock()

	if ok {
		cancel()
		m.log.Info("🛑 run cancel requested", zap.String("run_id", id))
		return nil
	}
	_, err := m.store.Get(ctx, id)
	return err
}

// Shutdown cancels every run and waits for them to record their final state.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closing = true
	m.mu.Unlock()
	m.stopAll()

	waited := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) execute(ctx context.Context, run *Run, done chan struct{}) {
	defer m.wg.Done()
	defer close(done)
	defer m.finishBookkeeping(run.ID)

	log := m.log.With(zap.String("run_id", run.ID))

	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		m.finish(run, nil, apperrors.RunAborted("cancelled while queued", ctx.Err()), log)
		return
	}

	metrics.ActiveRuns.Inc()
	defer metrics.ActiveRuns.Dec()

	started := time.Now().UTC()
	run.Status = StatusRunning
	run.StartedAt = &started
	m.save(run, log)

	result, err := m.runner.Run(ctx, run.Query)
	metrics.RunDuration.Observe(time.Since(started).Seconds())
	m.finish(run, result, err, log)
}

func (m *Manager) finish(run *Run, result *models.RunResult, err error, log *zap.Logger) {
	finished := time.Now().UTC()
	run.FinishedAt = &finished

	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		run.Status = StatusFailed
		run.Error = "run timed out: " + err.Error()
		run.ErrorType = string(apperrors.ErrTypeRunAborted)
	case err != nil && apperrors.IsType(err, apperrors.ErrTypeRunAborted):
		run.Status = StatusCancelled
		run.Error = err.Error()
		run.ErrorType = string(apperrors.ErrTypeRunAborted)
	case err != nil:
		run.Status = StatusFailed
		run.Error = err.Error()
		var de *apperrors.DomainError
		if errors.As(err, &de) {
			run.ErrorType = string(de.Type)
		}
	default:
		run.Status = StatusCompleted
		run.Result = result
		if m.exporter != nil {
			path, exportErr := m.exporter.Export(run.Query, result)
			if exportErr != nil {
				log.Error("❌ export failed", zap.Error(exportErr))
				run.ExportError = exportErr.Error()
			} else {
				run.ExportPath = path
			}
		}
	}

	metrics.RunsTotal.WithLabelValues(string(run.Status)).Inc()
	m.save(run, log)

	log.Info("🏁 run finished",
		zap.String("status", string(run.Status)),
		zap.String("error", run.Error),
		zap.String("export", run.ExportPath),
	)

	// notifications outlive the run context
	nctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, n := range m.notifiers {
		if err := n.Notify(nctx, run); err != nil {
			log.Warn("⚠️ notifier failed", zap.String("notifier", n.Name()), zap.Error(err))
		}
	}
}

func (m *Manager) save(run *Run, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.Save(ctx, run); err != nil {
		log.Error("❌ failed to save run", zap.String("status", string(run.Status)), zap.Error(err))
	}
}

func (m *Manager) finishBookkeeping(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.active[id]; ok {
		cancel()
		delete(m.active, id)
	}
	delete(m.done, id)
}

func withTimeout(parent context.Context, parentCancel context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		cancel()
		parentCancel()
	}
}
