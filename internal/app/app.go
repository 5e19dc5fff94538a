// Package app builds the crawl pipeline from configuration. Both binaries
// share it.
package app

import (
	"go-jobscout/internal/browser"
	"go-jobscout/internal/config"
	"go-jobscout/internal/enrich"
	"go-jobscout/internal/export"
	"go-jobscout/internal/fetch"
	"go-jobscout/internal/scraper"
	"go-jobscout/internal/scraper/internshala"

	"go.uber.org/zap"
)

type Pipeline struct {
	Opener     fetch.Opener
	Controller *scraper.Controller
	Lookup     *enrich.Lookup
	Exporter   *export.Exporter
}

// NewOpener picks the transport named by fetch_mode.
func NewOpener(cfg *config.Config, log *zap.Logger) fetch.Opener {
	if cfg.FetchMode == config.FetchModeBrowser {
		return browser.Opener{
			Options: browser.Options{
				Headless:      cfg.Headless,
				UserAgent:     cfg.UserAgent,
				Timeout:       cfg.FetchTimeout,
				SettleDelay:   cfg.SettleDelay,
				MaxPages:      cfg.BrowserPages,
				ScreenshotDir: cfg.ScreenshotDir,
				Scroll:        true,
			},
			Log: log,
		}
	}
	return fetch.HTTPOpener{Fetcher: fetch.NewHTTPFetcher(cfg.UserAgent, cfg.FetchTimeout)}
}

func NewPipeline(cfg *config.Config, log *zap.Logger) (*Pipeline, error) {
	opener := NewOpener(cfg, log)
	site := internshala.NewSite(cfg.BaseURL)

	ctrl, err := scraper.NewController(opener, site, cfg.BaseURL, scraper.OptionsFromConfig(cfg), log)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		Opener:     opener,
		Controller: ctrl,
		Lookup:     enrich.NewLookup(opener, site.SkillStrategies(), log),
		Exporter:   export.New(cfg.DownloadsDir, cfg.ExportFormat),
	}, nil
}
