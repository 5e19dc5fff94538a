// Package enrich reads the required-skills set from listing detail pages.
package enrich

import (
	"context"
	neturl "net/url"
	"regexp"
	"strings"

	apperrors "go-jobscout/internal/errors"
	"go-jobscout/internal/extract"
	"go-jobscout/internal/fetch"
	"go-jobscout/internal/metrics"

	"github.com/PuerkitoBio/goquery"
	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
)

// Strategy reads skill tokens from a detail page. An empty result means the
// strategy did not apply and the next one is tried.
type Strategy func(doc *goquery.Document) []string

// Container reads tokens from the element matching containerSel. Tokens are
// taken from labeled children first; without any, the container's own text
// is split into inline tokens.
func Container(containerSel string, labelSels ...string) Strategy {
	return func(doc *goquery.Document) []string {
		box := doc.Find(containerSel).First()
		if box.Length() == 0 {
			return nil
		}
		for _, sel := range labelSels {
			if tokens := texts(box.Find(sel)); len(tokens) > 0 {
				return tokens
			}
		}
		return splitInline(box.Text())
	}
}

// HeadingSibling finds a heading whose text matches pattern and reads tokens
// from the element that follows it. An inline heading such as
// <strong>Skills required:</strong> with the list as trailing text reads the
// rest of its parent instead.
func HeadingSibling(pattern *regexp.Regexp) Strategy {
	return func(doc *goquery.Document) []string {
		var tokens []string
		doc.Find("h1, h2, h3, h4, h5, h6, [class*='heading'], strong, b").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			heading := extract.CleanText(s.Text())
			if !pattern.MatchString(heading) {
				return true
			}
			if next := s.Next(); next.Length() > 0 {
				tokens = texts(next.Find("span, li, a"))
				if len(tokens) == 0 {
					tokens = splitInline(next.Text())
				}
			}
			if len(tokens) == 0 {
				tokens = splitInline(trailingText(s.Parent(), heading))
			}
			return len(tokens) == 0
		})
		return tokens
	}
}

// trailingText is the parent's text after the heading.
func trailingText(parent *goquery.Selection, heading string) string {
	text := extract.CleanText(parent.Text())
	if i := strings.Index(text, heading); i >= 0 {
		return text[i+len(heading):]
	}
	return ""
}

// Selector reads the text of every element matching selector.
func Selector(selector string) Strategy {
	return func(doc *goquery.Document) []string {
		return texts(doc.Find(selector))
	}
}

// SkillsRequiredPattern matches "Skill required", "Skills required",
// "Skill(s) required" and "Required skill(s)" headings.
var SkillsRequiredPattern = regexp.MustCompile(`(?i)^\s*(skill(\(s\)|s)?\s+required|required\s+skill(\(s\)|s)?)\s*:?\s*$`)

// Extract runs strategies in order and returns the first non-empty result,
// deduplicated case-insensitively in first-seen order.
func Extract(html string, strategies []Strategy) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []string{}
	}
	for _, s := range strategies {
		if tokens := dedupe(s(doc)); len(tokens) > 0 {
			return tokens
		}
	}
	return []string{}
}

type Enricher struct {
	fetcher    fetch.Fetcher
	strategies []Strategy
	log        *zap.Logger
}

func New(fetcher fetch.Fetcher, strategies []Strategy, log *zap.Logger) *Enricher {
	return &Enricher{fetcher: fetcher, strategies: strategies, log: log}
}

// FetchSkills never fails: fetch or parse problems yield an empty set.
func (e *Enricher) FetchSkills(ctx context.Context, url string) []string {
	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		metrics.DetailFetchTotal.WithLabelValues("error").Inc()
		e.log.Debug("⚠️ detail fetch failed", zap.String("url", url), zap.Error(err))
		return []string{}
	}
	skills := Extract(page.HTML, e.strategies)
	if len(skills) == 0 {
		metrics.DetailFetchTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.DetailFetchTotal.WithLabelValues("ok").Inc()
	}
	return skills
}

func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if v := extract.CleanText(s.Text()); v != "" {
			out = append(out, v)
		}
	})
	return out
}

var inlineSep = regexp.MustCompile(`[,;|•\n]+`)

func splitInline(text string) []string {
	var out []string
	for _, part := range inlineSep.Split(text, -1) {
		if v := extract.CleanText(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(tokens []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if extract.IsSentinel(t) {
			continue
		}
		if seen.Add(strings.ToLower(t)) {
			out = append(out, t)
		}
	}
	return out
}

// Lookup serves one-off detail requests outside a crawl run. Each call
// opens its own fetch session.
type Lookup struct {
	opener     fetch.Opener
	strategies []Strategy
	log        *zap.Logger
}

func NewLookup(opener fetch.Opener, strategies []Strategy, log *zap.Logger) *Lookup {
	return &Lookup{opener: opener, strategies: strategies, log: log}
}

// Skills returns the required skills of the listing at rawURL. Only a bad
// url or a session that cannot be opened is an error; page failures yield
// an empty set as in FetchSkills.
func (l *Lookup) Skills(ctx context.Context, rawURL string) ([]string, error) {
	u, err := neturl.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.InvalidInput("url must be an absolute http(s) address", err)
	}

	session, err := l.opener.Open(ctx)
	if err != nil {
		return nil, apperrors.Fetch("open fetch session", err)
	}
	defer session.Close()

	return New(session, l.strategies, l.log).FetchSkills(ctx, u.String()), nil
}
