package filter

import (
	"regexp"
	"strings"
	"unicode"

	"go-jobscout/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Exclude drops listings whose position or company mentions any configured
// keyword as a whole word. Matching ignores case and diacritics.
type Exclude struct {
	re *regexp.Regexp
}

// NewExclude returns nil when there is nothing to exclude; a nil *Exclude
// matches nothing.
func NewExclude(keywords []string) *Exclude {
	var parts []string
	for _, k := range keywords {
		k = normalizeText(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(k))
	}
	if len(parts) == 0 {
		return nil
	}
	return &Exclude{re: regexp.MustCompile(`\b(` + strings.Join(parts, "|") + `)\b`)}
}

func (e *Exclude) Match(rec models.ListingRecord) bool {
	if e == nil {
		return false
	}
	return e.re.MatchString(normalizeText(rec.Position + " " + rec.Company))
}

func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}
