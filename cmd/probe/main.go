// probe fetches one page with the configured transport and prints what the
// extractors see on it. Use it to check selectors against the live site.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go-jobscout/internal/app"
	"go-jobscout/internal/config"
	"go-jobscout/internal/enrich"
	"go-jobscout/internal/extract"
	"go-jobscout/internal/models"
	"go-jobscout/internal/scraper/internshala"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	keyword := flag.String("keyword", "", "search keyword")
	city := flag.String("city", "", "city filter")
	kind := flag.String("kind", "internship", "internship or job")
	page := flag.Int("page", 1, "result page to probe")
	detail := flag.String("detail", "", "probe a detail page URL for skills instead")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	zlog := zap.NewExample()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("🌐 Opening %s session...\n", cfg.FetchMode)
	session, err := app.NewOpener(cfg, zlog).Open(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to open session: %v", err)
	}
	defer session.Close()

	site := internshala.NewSite(cfg.BaseURL)

	if *detail != "" {
		skills := enrich.New(session, site.SkillStrategies(), zlog).FetchSkills(ctx, *detail)
		fmt.Printf("✅ %d skills: %v\n", len(skills), skills)
		return
	}

	listingKind, err := models.ParseListingKind(*kind)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	q := models.SearchQuery{Keyword: *keyword, City: *city, Kind: listingKind}
	url := site.ListingURL(q, *page)

	fmt.Printf("🔍 Navigating to %s\n", url)
	p, err := session.Fetch(ctx, url)
	if err != nil {
		log.Fatalf("❌ Fetch failed: %v", err)
	}
	fmt.Printf("✅ Status %d, %d bytes\n", p.StatusCode, len(p.HTML))

	ex, err := extract.New(cfg.BaseURL, site.Profile())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	lp, err := ex.ExtractListings(p.HTML)
	if err != nil {
		log.Fatalf("❌ Parse failed: %v", err)
	}
	fmt.Printf("📦 Marker found: %v, listing elements: %d\n", lp.HasMarker, len(lp.Listings))

	for _, l := range lp.Listings {
		f, ok := ex.ExtractFields(l, listingKind)
		if !ok {
			fmt.Printf("  #%d ⚠️ missing required fields\n", l.Index)
			continue
		}
		fmt.Printf("  #%d %s @ %s (%dy) %s degraded=%v\n",
			l.Index, f.Record.Position, f.Record.Company, f.Record.ExperienceYears, f.Record.URL, f.Degraded)
	}
}
