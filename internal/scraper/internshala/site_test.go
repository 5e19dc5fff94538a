package internshala

import (
	"testing"

	"go-jobscout/internal/extract"
	"go-jobscout/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingURL(t *testing.T) {
	site := NewSite("https://internshala.com/")

	tests := []struct {
		name     string
		q        models.SearchQuery
		page     int
		expected string
	}{
		{"keyword and city", models.SearchQuery{Keyword: "marketing", City: "delhi", Kind: models.KindInternship}, 1,
			"https://internshala.com/internships/marketing-internship-in-delhi/"},
		{"second page", models.SearchQuery{Keyword: "marketing", City: "delhi", Kind: models.KindInternship}, 2,
			"https://internshala.com/internships/marketing-internship-in-delhi/page-2/"},
		{"keyword only", models.SearchQuery{Keyword: "Data Science", Kind: models.KindInternship}, 1,
			"https://internshala.com/internships/data-science-internship/"},
		{"city only", models.SearchQuery{City: "mumbai", Kind: models.KindInternship}, 1,
			"https://internshala.com/internships/internship-in-mumbai/"},
		{"nothing", models.SearchQuery{Kind: models.KindInternship}, 1,
			"https://internshala.com/internships/"},
		{"jobs", models.SearchQuery{Keyword: "python", City: "pune", Kind: models.KindJob}, 3,
			"https://internshala.com/jobs/python-jobs-in-pune/page-3/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, site.ListingURL(tt.q, tt.page))
		})
	}
}

func TestProfile_ReadsInternshalaCard(t *testing.T) {
	site := NewSite("https://internshala.com")
	ex, err := extract.New("https://internshala.com", site.Profile())
	require.NoError(t, err)

	page, err := ex.ExtractListings(`<html><body><div id="internship_list_container_1">
<div class="container-fluid individual_internship" data-href="/internship/detail/ignored">
  <h3 class="job-internship-name"><a id="job_title" class="job-title-href" href="/job/detail/python-developer-123">Python Developer</a></h3>
  <p class="company-name">Acme Labs</p>
  <div class="row-1-item"><span>1-3 years</span></div>
  <span class="desktop">₹ 4,00,000 - 6,00,000</span>
</div></div></body></html>`)
	require.NoError(t, err)
	require.Len(t, page.Listings, 1)

	f, ok := ex.ExtractFields(page.Listings[0], models.KindJob)
	require.True(t, ok)
	assert.Equal(t, models.ListingRecord{
		Position:        "Python Developer",
		Company:         "Acme Labs",
		URL:             "https://internshala.com/job/detail/python-developer-123",
		ExperienceYears: 1,
		RequiredSkills:  []string{},
		Salary:          "₹ 4,00,000 - 6,00,000",
	}, f.Record)
}

func TestProfile_EmptyResultsPageHasMarker(t *testing.T) {
	site := NewSite("https://internshala.com")
	ex, err := extract.New("https://internshala.com", site.Profile())
	require.NoError(t, err)

	page, err := ex.ExtractListings(`<html><body><div id="internship_list_container_1"><p>No internships found</p></div></body></html>`)
	require.NoError(t, err)
	assert.True(t, page.HasMarker)
	assert.Empty(t, page.Listings)
}

func TestProfile_NestedCardKeepsFieldsApart(t *testing.T) {
	site := NewSite("https://internshala.com")
	ex, err := extract.New("https://internshala.com", site.Profile())
	require.NoError(t, err)

	page, err := ex.ExtractListings(`<html><body><div class="job-card"><div class="job-meta"><span class="job-title">Go Developer</span><span class="company">Acme</span></div><a href="/d/1">View</a></div></body></html>`)
	require.NoError(t, err)
	require.Len(t, page.Listings, 1)

	f, ok := ex.ExtractFields(page.Listings[0], models.KindInternship)
	require.True(t, ok)
	assert.Equal(t, "Go Developer", f.Record.Position)
	assert.Equal(t, "Acme", f.Record.Company)
	assert.Equal(t, "https://internshala.com/d/1", f.Record.URL)
}
