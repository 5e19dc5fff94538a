// Package runs turns a search into an explicit run handle: callers submit a
// query, get an id back and poll or wait for the outcome.
package runs

import (
	"context"
	"time"

	"go-jobscout/internal/models"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

type Run struct {
	ID          string             `json:"id"`
	Query       models.SearchQuery `json:"query"`
	Status      Status             `json:"status"`
	Result      *models.RunResult  `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
	ErrorType   string             `json:"error_type,omitempty"`
	ExportPath  string             `json:"export_path,omitempty"`
	ExportError string             `json:"export_error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	FinishedAt  *time.Time         `json:"finished_at,omitempty"`
}

// Store persists run snapshots. Get returns a NOT_FOUND domain error for
// unknown ids.
type Store interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
}

// Notifier is told about every run that reaches a terminal status.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, run *Run) error
}
