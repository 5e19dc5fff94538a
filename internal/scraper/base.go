// Define an interface for all listing sites
// Ensure consistency

package scraper

import (
	"time"

	"go-jobscout/internal/config"
	"go-jobscout/internal/enrich"
	"go-jobscout/internal/extract"
	"go-jobscout/internal/filter"
	"go-jobscout/internal/models"
)

// Site describes one listing board: how to address its result pages and
// where its fields live.
type Site interface {
	//Name is the board name (Internshala, ...)
	Name() string

	//ListingURL is the absolute URL of one result page
	ListingURL(q models.SearchQuery, page int) string

	Profile() extract.Profile
	SkillStrategies() []enrich.Strategy
}

type Options struct {
	MaxConsecutiveEmpty int
	// StrictMarker stops the run on a page without the content marker
	// instead of counting it as a skipped page.
	StrictMarker  bool
	PageDelayMin  time.Duration
	PageDelayMax  time.Duration
	EnrichWorkers int
	Exclude       *filter.Exclude
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxConsecutiveEmpty: cfg.MaxConsecutiveEmpty,
		StrictMarker:        cfg.MarkerPolicy == config.MarkerPolicyStop,
		PageDelayMin:        cfg.PageDelayMin,
		PageDelayMax:        cfg.PageDelayMax,
		EnrichWorkers:       cfg.EnrichWorkers,
		Exclude:             filter.NewExclude(cfg.ExcludeKeywords),
	}
}
