package database

import (
	"context"
	"embed"
	"fmt"
	"time"

	"go-jobscout/internal/models"
	"go-jobscout/internal/runs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Repository archives finished runs and their listings in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// poolers in transaction mode cannot keep prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Migrate applies the embedded schema. Statements are idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	for _, e := range entries {
		sql, err := migrations.ReadFile("migrations/" + e.Name())
		if err != nil {
			return err
		}
		//multi-statement files need the simple protocol
		if _, err := r.db.Exec(ctx, string(sql), pgx.QueryExecModeSimpleProtocol); err != nil {
			return fmt.Errorf("apply %s: %w", e.Name(), err)
		}
	}
	return nil
}

// ---------------- RUN OPERATIONS ----------------

// SaveRun upserts the run row and replaces its listings in one transaction.
func (r *Repository) SaveRun(ctx context.Context, run *runs.Run) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	pagesProcessed, skipped := 0, []int32{}
	var records []models.ListingRecord
	if run.Result != nil {
		pagesProcessed = run.Result.PagesProcessed
		for _, p := range run.Result.SkippedPages {
			skipped = append(skipped, int32(p))
		}
		records = run.Result.Records
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (id, keyword, city, kind, status, pages_processed, skipped_pages, error, export_path, created_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id)
		DO UPDATE SET status = EXCLUDED.status, pages_processed = EXCLUDED.pages_processed,
			skipped_pages = EXCLUDED.skipped_pages, error = EXCLUDED.error,
			export_path = EXCLUDED.export_path, finished_at = EXCLUDED.finished_at`,
		run.ID, run.Query.Keyword, run.Query.City, string(run.Query.Kind), string(run.Status),
		pagesProcessed, skipped, run.Error, run.ExportPath, run.CreatedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM listings WHERE run_id = $1", run.ID); err != nil {
		return fmt.Errorf("failed to clear listings: %w", err)
	}

	if len(records) > 0 {
		batch := &pgx.Batch{}
		for i, rec := range records {
			batch.Queue(`
				INSERT INTO listings (run_id, position_in_run, url, position, company, experience_years, required_skills, salary)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				run.ID, i, rec.URL, rec.Position, rec.Company, rec.ExperienceYears, rec.RequiredSkills, rec.Salary,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save listings: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListingsForRun returns the archived records of a run in listing order.
func (r *Repository) ListingsForRun(ctx context.Context, runID string) ([]models.ListingRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT position, company, url, experience_years, required_skills, salary
		FROM listings WHERE run_id = $1 ORDER BY position_in_run`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ListingRecord, error) {
		var rec models.ListingRecord
		err := row.Scan(&rec.Position, &rec.Company, &rec.URL, &rec.ExperienceYears, &rec.RequiredSkills, &rec.Salary)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan listings: %w", err)
	}
	return out, nil
}

// Notifier archives every finished run.
type Notifier struct {
	repo *Repository
}

func NewNotifier(repo *Repository) *Notifier {
	return &Notifier{repo: repo}
}

func (n *Notifier) Name() string {
	return "postgres"
}

func (n *Notifier) Notify(ctx context.Context, run *runs.Run) error {
	return n.repo.SaveRun(ctx, run)
}
