// Package extract pulls listing records out of listing-page markup using
// ordered chains of selector strategies.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one way of reading a value from an element. It must be pure:
// the same selection always yields the same result.
type Strategy func(sel *goquery.Selection) (string, bool)

// Chain tries strategies in order; the first non-empty, non-sentinel value wins.
type Chain []Strategy

func (c Chain) Extract(sel *goquery.Selection) (string, bool) {
	for _, s := range c {
		if v, ok := s(sel); ok {
			return v, true
		}
	}
	return "", false
}

// Text reads the trimmed text of the first descendant matching selector.
func Text(selector string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		return usable(sel.Find(selector).First().Text())
	}
}

// Attr reads an attribute of the first descendant matching selector.
func Attr(selector, attr string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		v, _ := sel.Find(selector).First().Attr(attr)
		return usable(v)
	}
}

// SelfAttr reads an attribute of the element itself.
func SelfAttr(attr string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		v, _ := sel.Attr(attr)
		return usable(v)
	}
}

// AnyAnchorText reads the first anchor with visible text.
func AnyAnchorText() Strategy {
	return firstUsable("a", func(s *goquery.Selection) string { return s.Text() })
}

// AnyAnchorHref reads the first non-empty, non-javascript href.
func AnyAnchorHref() Strategy {
	return firstUsable("a[href]", func(s *goquery.Selection) string {
		href, _ := s.Attr("href")
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "javascript:") || strings.HasPrefix(href, "#") {
			return ""
		}
		return href
	})
}

// AnyHeading reads the first h1-h6 with visible text.
func AnyHeading() Strategy {
	return firstUsable("h1, h2, h3, h4, h5, h6", func(s *goquery.Selection) string { return s.Text() })
}

// ClassContains reads text from a descendant whose class attribute contains
// one of the keywords, compared case-insensitively. Keywords are tried in
// order, and for each keyword the innermost matching element wins, so a
// "job-card" wrapper never shadows the "job-title" inside it.
func ClassContains(keywords ...string) Strategy {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return func(sel *goquery.Selection) (string, bool) {
		for _, k := range lowered {
			if v, ok := innermostClassText(sel, k); ok {
				return v, true
			}
		}
		return "", false
	}
}

func innermostClassText(sel *goquery.Selection, keyword string) (string, bool) {
	matches := sel.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.AttrOr("class", "")), keyword)
	})
	var out string
	matches.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		//nested match with text of its own, let the inner one answer
		if inner := s.Find("[class]").Intersection(matches); inner.Length() > 0 {
			if _, ok := usable(inner.Text()); ok {
				return true
			}
		}
		if v, ok := usable(spacedText(s)); ok {
			out = v
			return false
		}
		return true
	})
	return out, out != ""
}

// spacedText joins the text nodes under s with spaces, so sibling elements
// never run together.
func spacedText(s *goquery.Selection) string {
	var parts []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			parts = append(parts, c.Text())
			return
		}
		parts = append(parts, spacedText(c))
	})
	return strings.Join(parts, " ")
}

func firstUsable(selector string, read func(*goquery.Selection) string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		var out string
		sel.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v, ok := usable(read(s)); ok {
				out = v
				return false
			}
			return true
		})
		return out, out != ""
	}
}

var sentinels = map[string]struct{}{
	"unknown": {},
	"n/a":     {},
	"na":      {},
	"-":       {},
}

// IsSentinel reports whether v is a placeholder standing in for a missing value.
func IsSentinel(v string) bool {
	_, ok := sentinels[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// usable collapses whitespace and rejects empty and sentinel values.
func usable(v string) (string, bool) {
	v = CleanText(v)
	if v == "" || IsSentinel(v) {
		return "", false
	}
	return v, true
}

// CleanText trims and collapses runs of whitespace into single spaces.
func CleanText(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

var firstIntRegex = regexp.MustCompile(`\d+`)

// FirstInt returns the first run of digits in text, or 0 when there is none.
// "2-4 years" yields 2.
func FirstInt(text string) int {
	m := firstIntRegex.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}
