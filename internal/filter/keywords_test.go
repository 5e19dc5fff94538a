package filter

import (
	"testing"

	"go-jobscout/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestExclude_Match(t *testing.T) {
	ex := NewExclude([]string{"Senior", " unpaid ", ""})

	tests := []struct {
		name     string
		rec      models.ListingRecord
		expected bool
	}{
		{"keyword in position", models.ListingRecord{Position: "Senior Marketing Lead", Company: "Acme"}, true},
		{"keyword in company", models.ListingRecord{Position: "Intern", Company: "Unpaid Collective"}, true},
		{"substring only", models.ListingRecord{Position: "Seniority Analyst", Company: "Acme"}, false},
		{"clean", models.ListingRecord{Position: "Marketing Intern", Company: "Acme"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ex.Match(tt.rec))
		})
	}
}

func TestExclude_IgnoresDiacritics(t *testing.T) {
	ex := NewExclude([]string{"cafe"})
	assert.True(t, ex.Match(models.ListingRecord{Position: "Barista", Company: "Café Noir"}))
}

func TestExclude_NilMatchesNothing(t *testing.T) {
	ex := NewExclude(nil)
	assert.Nil(t, ex)
	assert.False(t, ex.Match(models.ListingRecord{Position: "anything"}))
}
