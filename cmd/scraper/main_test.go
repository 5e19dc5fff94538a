package main

import (
	"testing"

	apperrors "go-jobscout/internal/errors"
	"go-jobscout/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name      string
		flags     queryFlags
		wantMax   int
		wantRange *models.PageRange
	}{
		{"default max pages", queryFlags{kind: "internship", maxPages: 1}, 1, nil},
		{"explicit max pages", queryFlags{kind: "job", maxPages: 4, maxPagesSet: true}, 4, nil},
		{"range replaces default", queryFlags{kind: "internship", maxPages: 1, startPage: 2, endPage: 5}, 0, &models.PageRange{Start: 2, End: 5}},
		{"end only starts at one", queryFlags{kind: "internship", maxPages: 1, endPage: 3}, 0, &models.PageRange{Start: 1, End: 3}},
		{"start only is one page", queryFlags{kind: "internship", maxPages: 1, startPage: 7}, 0, &models.PageRange{Start: 7, End: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := buildQuery(tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMax, q.MaxPages)
			assert.Equal(t, tt.wantRange, q.Range)
		})
	}
}

func TestBuildQuery_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		flags queryFlags
	}{
		{"explicit max pages with range", queryFlags{kind: "internship", maxPages: 3, maxPagesSet: true, startPage: 2, endPage: 4}},
		{"end before start", queryFlags{kind: "internship", maxPages: 1, startPage: 5, endPage: 2}},
		{"negative max pages", queryFlags{kind: "internship", maxPages: -1, maxPagesSet: true}},
		{"unknown kind", queryFlags{kind: "gig", maxPages: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildQuery(tt.flags)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidInput))
		})
	}
}
