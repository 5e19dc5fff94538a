package extract

import (
	"fmt"
	"net/url"
	"strings"

	"go-jobscout/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// Profile describes where a site keeps its listing fields. Every field is a
// chain so markup drift degrades to broader guesses instead of nothing.
type Profile struct {
	// Marker is present on genuine listing pages, even ones with no results.
	Marker string
	// ListingSelectors are tried in order; the first with matches wins.
	ListingSelectors []string

	Position   Chain
	Company    Chain
	Href       Chain
	Experience Chain
	Salary     Chain
}

// RawListing is one listing element as found on the page.
type RawListing struct {
	Index int
	Sel   *goquery.Selection
}

// ListingPage is a parsed listing page.
type ListingPage struct {
	HasMarker bool
	Listings  []RawListing
}

// Fields is the outcome of extracting one listing element. Degraded names
// the optional fields whose chains were exhausted and fell back to defaults.
type Fields struct {
	Record   models.ListingRecord
	Degraded []string
}

type Extractor struct {
	base    *url.URL
	profile Profile
}

func New(baseURL string, profile Profile) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return &Extractor{base: base, profile: profile}, nil
}

// ExtractListings parses html and returns the listing elements in page order.
func (e *Extractor) ExtractListings(html string) (*ListingPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	page := &ListingPage{}
	for _, selector := range e.profile.ListingSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		found.Each(func(i int, s *goquery.Selection) {
			page.Listings = append(page.Listings, RawListing{Index: i, Sel: s})
		})
		break
	}

	page.HasMarker = len(page.Listings) > 0
	if !page.HasMarker && e.profile.Marker != "" {
		page.HasMarker = doc.Find(e.profile.Marker).Length() > 0
	}
	return page, nil
}

// ExtractFields reads one listing. ok is false when position, company or
// URL cannot be determined; such elements are skipped, not reported.
func (e *Extractor) ExtractFields(l RawListing, kind models.ListingKind) (Fields, bool) {
	position, ok := e.profile.Position.Extract(l.Sel)
	if !ok {
		return Fields{}, false
	}
	company, ok := e.profile.Company.Extract(l.Sel)
	if !ok {
		return Fields{}, false
	}
	href, ok := e.profile.Href.Extract(l.Sel)
	if !ok {
		return Fields{}, false
	}
	link, ok := ResolveURL(e.base, href)
	if !ok {
		return Fields{}, false
	}

	out := Fields{Record: models.ListingRecord{
		Position:       position,
		Company:        company,
		URL:            link,
		RequiredSkills: []string{},
	}}

	if exp, ok := e.profile.Experience.Extract(l.Sel); ok {
		out.Record.ExperienceYears = FirstInt(exp)
	} else {
		out.Degraded = append(out.Degraded, "experience")
	}

	if kind == models.KindJob {
		if salary, ok := e.profile.Salary.Extract(l.Sel); ok {
			out.Record.Salary = salary
		} else {
			out.Degraded = append(out.Degraded, "salary")
		}
	}
	return out, true
}

// ResolveURL returns href unchanged apart from its fragment when it is
// absolute, otherwise resolves it against base.
func ResolveURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if !ref.IsAbs() {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	ref.Fragment = ""
	return ref.String(), true
}
