package database

import (
	"context"
	"os"
	"testing"
	"time"

	"go-jobscout/internal/models"
	"go-jobscout/internal/runs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	sql, err := migrations.ReadFile("migrations/" + entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(sql), "CREATE TABLE IF NOT EXISTS listings")
}

//integration test: needs postgres, set TEST_DATABASE_URL
func TestRepository_SaveRun(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	repo, err := ConnectDB(ctx, dsn)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.Migrate(ctx))

	finished := time.Now().UTC()
	run := &runs.Run{
		ID:     uuid.NewString(),
		Query:  models.SearchQuery{Keyword: "marketing", City: "delhi", Kind: models.KindInternship, MaxPages: 2},
		Status: runs.StatusCompleted,
		Result: &models.RunResult{
			Records: []models.ListingRecord{
				{Position: "Intern A", Company: "Acme", URL: "https://x.example/a", ExperienceYears: 1, RequiredSkills: []string{"SEO"}},
				{Position: "Intern B", Company: "Beta", URL: "https://x.example/b", RequiredSkills: []string{}},
			},
			PagesProcessed: 2,
			SkippedPages:   []int{},
		},
		CreatedAt:  finished.Add(-time.Minute),
		FinishedAt: &finished,
	}

	n := NewNotifier(repo)
	require.NoError(t, n.Notify(ctx, run))
	require.NoError(t, n.Notify(ctx, run), "saving twice replaces listings")

	got, err := repo.ListingsForRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Intern A", got[0].Position)
	assert.Equal(t, []string{"SEO"}, got[0].RequiredSkills)
	assert.Equal(t, "https://x.example/b", got[1].URL)
}
