package models

import (
	"fmt"
	"strings"
)

type ListingKind string

const (
	KindInternship ListingKind = "internship"
	KindJob        ListingKind = "job"
)

// ParseListingKind accepts "internship"/"internships"/"job"/"jobs" in any case.
// An empty string means internship.
func ParseListingKind(s string) (ListingKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "internship", "internships":
		return KindInternship, nil
	case "job", "jobs":
		return KindJob, nil
	}
	return "", fmt.Errorf("unknown listing kind %q", s)
}

type PageRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// SearchQuery is immutable once a run starts.
type SearchQuery struct {
	Keyword  string      `json:"keyword,omitempty"`
	City     string      `json:"city,omitempty"`
	Kind     ListingKind `json:"kind"`
	Range    *PageRange  `json:"page_range,omitempty"`
	MaxPages int         `json:"max_pages"`
}

func (q SearchQuery) Validate() error {
	if q.Kind != KindInternship && q.Kind != KindJob {
		return fmt.Errorf("unknown listing kind %q", q.Kind)
	}
	if q.MaxPages < 0 {
		return fmt.Errorf("max_pages must be >= 0, got %d", q.MaxPages)
	}
	if q.Range != nil {
		if q.MaxPages > 0 {
			return fmt.Errorf("max_pages and page range are mutually exclusive")
		}
		if q.Range.Start < 1 {
			return fmt.Errorf("start page must be >= 1, got %d", q.Range.Start)
		}
		if q.Range.End < q.Range.Start {
			return fmt.Errorf("end page %d is before start page %d", q.Range.End, q.Range.Start)
		}
	}
	return nil
}

// Pages returns the inclusive page bounds of the query. Without an explicit
// range or a positive max_pages only the first page is walked.
func (q SearchQuery) Pages() (start, end int) {
	if q.Range != nil {
		return q.Range.Start, q.Range.End
	}
	if q.MaxPages > 0 {
		return 1, q.MaxPages
	}
	return 1, 1
}

// Slug is used to name export files: "<keyword|all>_<city|any>".
func (q SearchQuery) Slug() string {
	kw := slugify(q.Keyword)
	if kw == "" {
		kw = "all"
	}
	city := slugify(q.City)
	if city == "" {
		city = "any"
	}
	return kw + "_" + city
}

func slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// ListingRecord is identified by URL.
type ListingRecord struct {
	Position        string   `json:"position"`
	Company         string   `json:"company"`
	URL             string   `json:"url"`
	ExperienceYears int      `json:"experience_years"`
	RequiredSkills  []string `json:"required_skills"`
	Salary          string   `json:"salary,omitempty"`
}

type PageStatus string

const (
	PageOK              PageStatus = "ok"
	PageEmpty           PageStatus = "empty"
	PageNoContentMarker PageStatus = "no_content_marker"
	PageFetchError      PageStatus = "fetch_error"
)

// Skipped reports whether the outcome is surfaced in RunResult.SkippedPages.
func (s PageStatus) Skipped() bool {
	return s == PageFetchError || s == PageNoContentMarker
}

type PageOutcome struct {
	PageNumber     int        `json:"page"`
	RecordsYielded int        `json:"records"`
	Status         PageStatus `json:"status"`
}

type RunResult struct {
	Records        []ListingRecord `json:"results"`
	PagesProcessed int             `json:"pages_processed"`
	SkippedPages   []int           `json:"skipped_pages"`
	Pages          []PageOutcome   `json:"pages,omitempty"`
}
