package internshala

import (
	"fmt"
	"net/url"
	"strings"

	"go-jobscout/internal/enrich"
	"go-jobscout/internal/extract"
	"go-jobscout/internal/models"
)

type Site struct {
	baseURL string
}

func NewSite(baseURL string) *Site {
	return &Site{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Site) Name() string {
	return "Internshala"
}

// ListingURL builds the search URL for one page:
//
//	/internships/{kw}-internship-in-{city}/page-N/
//	/jobs/{kw}-jobs-in-{city}/page-N/
//
// keyword and city are optional; the page suffix is omitted for page 1.
func (s *Site) ListingURL(q models.SearchQuery, page int) string {
	section, noun := "internships", "internship"
	if q.Kind == models.KindJob {
		section, noun = "jobs", "jobs"
	}

	kw := slug(q.Keyword)
	city := slug(q.City)

	var path string
	switch {
	case kw != "" && city != "":
		path = fmt.Sprintf("%s-%s-in-%s/", kw, noun, city)
	case kw != "":
		path = fmt.Sprintf("%s-%s/", kw, noun)
	case city != "":
		path = fmt.Sprintf("%s-in-%s/", noun, city)
	}

	u := fmt.Sprintf("%s/%s/%s", s.baseURL, section, path)
	if page > 1 {
		u += fmt.Sprintf("page-%d/", page)
	}
	return u
}

func (s *Site) Profile() extract.Profile {
	return extract.Profile{
		Marker: "[id^='internship_list_container'], #list-container",
		ListingSelectors: []string{
			"div.individual_internship",
			"[class*='individual_internship']",
			"[class*='job-card'], [class*='listing-card']",
		},
		Position: extract.Chain{
			extract.Text("a#job_title"),
			extract.Text("a.job-title-href"),
			extract.Text(".job-internship-name"),
			extract.AnyHeading(),
			extract.ClassContains("title", "job", "listing"),
			extract.AnyAnchorText(),
		},
		Company: extract.Chain{
			extract.Text("p.company-name"),
			extract.Text(".company-name"),
			extract.Text(".company_name"),
			extract.ClassContains("company", "employer"),
		},
		Href: extract.Chain{
			extract.Attr("a#job_title", "href"),
			extract.Attr("a.job-title-href", "href"),
			extract.SelfAttr("data-href"),
			extract.AnyAnchorHref(),
		},
		Experience: extract.Chain{
			extract.Text("div.row-1-item span"),
			extract.ClassContains("experience"),
		},
		Salary: extract.Chain{
			extract.Text("span.desktop"),
			extract.Text(".stipend"),
			extract.ClassContains("salary", "stipend"),
		},
	}
}

func (s *Site) SkillStrategies() []enrich.Strategy {
	return []enrich.Strategy{
		enrich.Container("#skillsContainer", "span.round_tabs", ".skill", "li"),
		enrich.HeadingSibling(enrich.SkillsRequiredPattern),
		enrich.Selector("div.round_tabs_container span.round_tabs"),
	}
}

func slug(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), "-")
	return url.PathEscape(s)
}
