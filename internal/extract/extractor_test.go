package extract

import (
	"net/url"
	"strings"
	"testing"

	"go-jobscout/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() Profile {
	return Profile{
		Marker:           "#list_container",
		ListingSelectors: []string{"div.individual_internship", "[class*='job-card']"},
		Position:         Chain{Text("a#job_title"), AnyHeading(), ClassContains("title"), AnyAnchorText()},
		Company:          Chain{Text("p.company-name"), ClassContains("company")},
		Href:             Chain{Attr("a#job_title", "href"), SelfAttr("data-href"), AnyAnchorHref()},
		Experience:       Chain{Text("div.row-1-item span"), ClassContains("experience")},
		Salary:           Chain{Text("span.desktop"), ClassContains("salary")},
	}
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	ex, err := New("https://internshala.com", testProfile())
	require.NoError(t, err)
	return ex
}

func selection(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("body")
}

const primaryPage = `<html><body><div id="list_container">
<div class="individual_internship">
  <a id="job_title" href="/internship/detail/marketing-1">Marketing Intern</a>
  <p class="company-name"> Acme  Media </p>
  <div class="row-1-item"><span>2-4 years</span></div>
  <span class="desktop">₹ 10,000 /month</span>
</div>
<div class="individual_internship">
  <a id="job_title" href="https://other.example/jobs/2#apply">Growth Intern</a>
  <p class="company-name">Beta</p>
</div>
</div></body></html>`

func TestExtractListings_PrimarySelector(t *testing.T) {
	ex := newTestExtractor(t)

	page, err := ex.ExtractListings(primaryPage)
	require.NoError(t, err)

	assert.True(t, page.HasMarker)
	assert.Len(t, page.Listings, 2)
}

func TestExtractListings_MarkerWithoutListings(t *testing.T) {
	ex := newTestExtractor(t)

	page, err := ex.ExtractListings(`<html><body><div id="list_container"></div></body></html>`)
	require.NoError(t, err)
	assert.True(t, page.HasMarker)
	assert.Empty(t, page.Listings)

	page, err = ex.ExtractListings(`<html><body><h1>Page not found</h1></body></html>`)
	require.NoError(t, err)
	assert.False(t, page.HasMarker)
}

func TestExtractListings_FallbackSelector(t *testing.T) {
	ex := newTestExtractor(t)

	page, err := ex.ExtractListings(`<html><body><div class="job-card-v2"><h3>Designer</h3></div></body></html>`)
	require.NoError(t, err)
	assert.True(t, page.HasMarker)
	assert.Len(t, page.Listings, 1)
}

func TestExtractFields_PrimaryChain(t *testing.T) {
	ex := newTestExtractor(t)
	page, err := ex.ExtractListings(primaryPage)
	require.NoError(t, err)

	first, ok := ex.ExtractFields(page.Listings[0], models.KindJob)
	require.True(t, ok)
	assert.Equal(t, "Marketing Intern", first.Record.Position)
	assert.Equal(t, "Acme Media", first.Record.Company)
	assert.Equal(t, "https://internshala.com/internship/detail/marketing-1", first.Record.URL)
	assert.Equal(t, 2, first.Record.ExperienceYears)
	assert.Equal(t, "₹ 10,000 /month", first.Record.Salary)
	assert.Empty(t, first.Degraded)

	second, ok := ex.ExtractFields(page.Listings[1], models.KindInternship)
	require.True(t, ok)
	assert.Equal(t, "https://other.example/jobs/2", second.Record.URL)
	assert.Equal(t, 0, second.Record.ExperienceYears)
	assert.Empty(t, second.Record.Salary, "salary is only read for jobs")
	assert.Equal(t, []string{"experience"}, second.Degraded)
}

func TestExtractFields_BroaderFallbacks(t *testing.T) {
	ex := newTestExtractor(t)
	page, err := ex.ExtractListings(`<html><body>
<div class="job-card" data-href="/job/detail/99">
  <h4>Data Analyst</h4>
  <div class="CompanyBlock">Gamma Ltd</div>
  <div class="min-experience">3 years</div>
  <div class="salary-range">5-7 LPA</div>
</div></body></html>`)
	require.NoError(t, err)
	require.Len(t, page.Listings, 1)

	f, ok := ex.ExtractFields(page.Listings[0], models.KindJob)
	require.True(t, ok)
	assert.Equal(t, "Data Analyst", f.Record.Position)
	assert.Equal(t, "Gamma Ltd", f.Record.Company)
	assert.Equal(t, "https://internshala.com/job/detail/99", f.Record.URL)
	assert.Equal(t, 3, f.Record.ExperienceYears)
	assert.Equal(t, "5-7 LPA", f.Record.Salary)
}

func TestExtractFields_SkipsMissingOrSentinel(t *testing.T) {
	ex := newTestExtractor(t)

	tests := []struct {
		name string
		html string
	}{
		{"no company", `<div class="individual_internship"><a id="job_title" href="/a">Intern</a></div>`},
		{"unknown company", `<div class="individual_internship"><a id="job_title" href="/a">Intern</a><p class="company-name">Unknown</p></div>`},
		{"n/a position", `<div class="individual_internship"><a id="job_title" href="/a">N/A</a><p class="company-name">Acme</p></div>`},
		{"no link", `<div class="individual_internship"><h3>Intern</h3><p class="company-name">Acme</p></div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := ex.ExtractListings("<html><body>" + tt.html + "</body></html>")
			require.NoError(t, err)
			require.Len(t, page.Listings, 1)
			_, ok := ex.ExtractFields(page.Listings[0], models.KindInternship)
			assert.False(t, ok)
		})
	}
}

func TestExtractFields_Idempotent(t *testing.T) {
	ex := newTestExtractor(t)

	run := func() []models.ListingRecord {
		page, err := ex.ExtractListings(primaryPage)
		require.NoError(t, err)
		var out []models.ListingRecord
		for _, l := range page.Listings {
			if f, ok := ex.ExtractFields(l, models.KindJob); ok {
				out = append(out, f.Record)
			}
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestFirstInt(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"2-4 years", 2},
		{"Fresher", 0},
		{"", 0},
		{"Min. 10+ yrs", 10},
		{"0 years", 0},
		{"99999999999999999999999 years", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, FirstInt(tt.text))
		})
	}
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://internshala.com")

	tests := []struct {
		href     string
		expected string
		ok       bool
	}{
		{"/internship/detail/x", "https://internshala.com/internship/detail/x", true},
		{"internship/detail/x", "https://internshala.com/internship/detail/x", true},
		{"https://cdn.example/y?a=1", "https://cdn.example/y?a=1", true},
		{"/a#section", "https://internshala.com/a", true},
		{"mailto:hr@example.com", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			got, ok := ResolveURL(base, tt.href)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestChain_FirstSuccessWins(t *testing.T) {
	sel := selection(t, `<html><body><span class="a">first</span><span class="b">second</span></body></html>`)

	v, ok := Chain{Text(".missing"), Text(".b"), Text(".a")}.Extract(sel)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	_, ok = Chain{Text(".missing")}.Extract(sel)
	assert.False(t, ok)
}

func TestClassContains_CaseInsensitive(t *testing.T) {
	sel := selection(t, `<html><body><div class="Item-SALARY">₹ 5000</div></body></html>`)

	v, ok := ClassContains("salary")(sel)
	assert.True(t, ok)
	assert.Equal(t, "₹ 5000", v)
}

func TestClassContains_PrefersInnermostMatch(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		keywords []string
		expected string
	}{
		{
			name:     "wrapper sharing the keyword",
			html:     `<div class="job-meta"><span class="job-title">Go Developer</span><span class="company">Acme</span></div>`,
			keywords: []string{"job"},
			expected: "Go Developer",
		},
		{
			name:     "earlier keyword wins over document order",
			html:     `<div class="job-meta"><span class="job-title">Go Developer</span><span class="company">Acme</span></div>`,
			keywords: []string{"title", "job"},
			expected: "Go Developer",
		},
		{
			name:     "empty inner match falls back to wrapper",
			html:     `<div class="salary-box">5 LPA <span class="salary-note"></span></div>`,
			keywords: []string{"salary"},
			expected: "5 LPA",
		},
		{
			name:     "siblings inside a match stay apart",
			html:     `<div class="stipend"><span>₹ 5000</span><span>/month</span></div>`,
			keywords: []string{"stipend"},
			expected: "₹ 5000 /month",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := selection(t, "<html><body>"+tt.html+"</body></html>")
			v, ok := ClassContains(tt.keywords...)(sel)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestExtractFields_NestedCardWrapper(t *testing.T) {
	ex := newTestExtractor(t)
	page, err := ex.ExtractListings(`<html><body><div class="job-card"><div class="job-meta"><span class="job-title">Go Developer</span><span class="company">Acme</span></div><a href="/d/1">View</a></div></body></html>`)
	require.NoError(t, err)
	require.Len(t, page.Listings, 1)

	f, ok := ex.ExtractFields(page.Listings[0], models.KindInternship)
	require.True(t, ok)
	assert.Equal(t, "Go Developer", f.Record.Position)
	assert.Equal(t, "Acme", f.Record.Company)
	assert.Equal(t, "https://internshala.com/d/1", f.Record.URL)
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New("/relative", testProfile())
	assert.Error(t, err)
}
