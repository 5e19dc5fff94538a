package scraper

import (
	"context"
	"fmt"
	"strings"

	"go-jobscout/internal/dedup"
	"go-jobscout/internal/enrich"
	apperrors "go-jobscout/internal/errors"
	"go-jobscout/internal/extract"
	"go-jobscout/internal/fetch"
	"go-jobscout/internal/metrics"
	"go-jobscout/internal/models"
	"go-jobscout/internal/telemetry"
	"go-jobscout/utils"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Controller walks the result pages of one Site for a query.
type Controller struct {
	opener    fetch.Opener
	site      Site
	extractor *extract.Extractor
	opts      Options
	log       *zap.Logger
	tracer    trace.Tracer
}

func NewController(opener fetch.Opener, site Site, baseURL string, opts Options, log *zap.Logger) (*Controller, error) {
	ex, err := extract.New(baseURL, site.Profile())
	if err != nil {
		return nil, err
	}
	if opts.MaxConsecutiveEmpty < 1 {
		opts.MaxConsecutiveEmpty = 3
	}
	if opts.EnrichWorkers < 1 {
		opts.EnrichWorkers = 1
	}
	return &Controller{
		opener:    opener,
		site:      site,
		extractor: ex,
		opts:      opts,
		log:       log.With(zap.String("site", site.Name())),
		tracer:    telemetry.GetTracer("scraper"),
	}, nil
}

// runState is scoped to a single Run call and never shared.
type runState struct {
	seen             *dedup.SeenURLSet
	records          []models.ListingRecord
	outcomes         []models.PageOutcome
	skipped          []int
	consecutiveEmpty int
}

func (s *runState) record(o models.PageOutcome) {
	s.outcomes = append(s.outcomes, o)
	if o.Status.Skipped() {
		s.skipped = append(s.skipped, o.PageNumber)
	}
	if o.Status == models.PageOK {
		s.consecutiveEmpty = 0
	} else {
		s.consecutiveEmpty++
	}
	metrics.PagesTotal.WithLabelValues(string(o.Status)).Inc()
}

// Run crawls the pages selected by q and returns every unique record in
// listing order. Bad pages are recorded as skipped; the run only fails on
// invalid input, cancellation, or (strict marker policy) a first page that
// yields no listing page at all.
func (c *Controller) Run(ctx context.Context, q models.SearchQuery) (*models.RunResult, error) {
	if err := q.Validate(); err != nil {
		return nil, apperrors.InvalidInput("invalid search query", err)
	}

	ctx, span := c.tracer.Start(ctx, "scraper.Run")
	defer span.End()
	span.SetAttributes(
		telemetry.String("keyword", q.Keyword),
		telemetry.String("city", q.City),
		telemetry.String("kind", string(q.Kind)),
	)

	session, err := c.opener.Open(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open session")
		return nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			c.log.Warn("⚠️ failed to close fetch session", zap.Error(err))
		}
	}()

	enricher := enrich.New(session, c.site.SkillStrategies(), c.log)
	state := &runState{seen: dedup.NewSeenURLSet()}

	start, end := q.Pages()
	c.log.Info("🔍 starting run",
		zap.String("keyword", q.Keyword),
		zap.String("city", q.City),
		zap.String("kind", string(q.Kind)),
		zap.Int("start_page", start),
		zap.Int("end_page", end),
	)

	for page := start; ; page++ {
		if page > start {
			if err := utils.RandomDelay(ctx, c.opts.PageDelayMin, c.opts.PageDelayMax); err != nil {
				return nil, c.aborted(span, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, c.aborted(span, err)
		}

		outcome, records := c.processPage(ctx, session, enricher, q, page, state)
		if err := ctx.Err(); err != nil {
			return nil, c.aborted(span, err)
		}
		state.record(outcome)
		state.records = append(state.records, records...)

		if c.opts.StrictMarker && outcome.Status.Skipped() {
			if page == start {
				err := firstPageError(outcome, c.site.ListingURL(q, page))
				span.RecordError(err)
				span.SetStatus(codes.Error, "first page unusable")
				return nil, err
			}
			if outcome.Status == models.PageNoContentMarker {
				c.log.Info("🛑 no listing content, stopping", zap.Int("page", page))
				break
			}
		}
		if page >= end {
			break
		}
		if state.consecutiveEmpty >= c.opts.MaxConsecutiveEmpty {
			c.log.Info("🛑 consecutive empty pages, stopping",
				zap.Int("page", page),
				zap.Int("threshold", c.opts.MaxConsecutiveEmpty),
			)
			break
		}
	}

	result := Finalize(state.records, len(state.outcomes), state.skipped)
	result.Pages = state.outcomes

	metrics.RecordsTotal.Add(float64(len(result.Records)))
	span.SetAttributes(
		telemetry.Int("records", len(result.Records)),
		telemetry.Int("pages_processed", result.PagesProcessed),
	)
	c.log.Info("✅ run finished",
		zap.Int("records", len(result.Records)),
		zap.Int("pages_processed", result.PagesProcessed),
		zap.Ints("skipped_pages", result.SkippedPages),
	)
	return result, nil
}

func (c *Controller) processPage(
	ctx context.Context,
	session fetch.Fetcher,
	enricher *enrich.Enricher,
	q models.SearchQuery,
	page int,
	state *runState,
) (models.PageOutcome, []models.ListingRecord) {
	url := c.site.ListingURL(q, page)
	ctx, span := c.tracer.Start(ctx, "scraper.Page")
	defer span.End()
	span.SetAttributes(telemetry.Int("page", page), telemetry.String("url", url))

	outcome := models.PageOutcome{PageNumber: page}
	log := c.log.With(zap.Int("page", page), zap.String("url", url))

	log.Info("📄 fetching page")
	fetched, err := session.Fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		log.Warn("⚠️ page fetch failed, skipping", zap.Error(err))
		outcome.Status = models.PageFetchError
		return outcome, nil
	}

	listing, err := c.extractor.ExtractListings(fetched.HTML)
	if err != nil {
		span.RecordError(err)
		log.Warn("⚠️ page parse failed, skipping", zap.Error(err))
		outcome.Status = models.PageFetchError
		return outcome, nil
	}
	if !listing.HasMarker {
		log.Warn("⚠️ no listing content marker on page")
		outcome.Status = models.PageNoContentMarker
		return outcome, nil
	}
	if len(listing.Listings) == 0 {
		log.Info("📭 no listings on page")
		outcome.Status = models.PageEmpty
		return outcome, nil
	}

	var fresh []models.ListingRecord
	duplicates, rejected := 0, 0
	for _, raw := range listing.Listings {
		fields, ok := c.extractor.ExtractFields(raw, q.Kind)
		if !ok {
			rejected++
			continue
		}
		if len(fields.Degraded) > 0 {
			if ce := log.Check(zap.DebugLevel, "parse degraded"); ce != nil {
				ce.Write(
					zap.String("listing", fields.Record.URL),
					zap.Error(apperrors.ParseDegraded("missing "+strings.Join(fields.Degraded, ", "), nil)),
				)
			}
		}
		if state.seen.IsSeen(fields.Record.URL) {
			duplicates++
			continue
		}
		if c.opts.Exclude.Match(fields.Record) {
			rejected++
			continue
		}
		if !state.seen.MarkSeen(fields.Record.URL) {
			duplicates++
			continue
		}
		fresh = append(fresh, fields.Record)
	}
	metrics.DuplicatesTotal.Add(float64(duplicates))

	if len(fresh) == 0 {
		log.Info("📭 no new records on page",
			zap.Int("listings", len(listing.Listings)),
			zap.Int("duplicates", duplicates),
			zap.Int("rejected", rejected),
		)
		outcome.Status = models.PageEmpty
		return outcome, nil
	}

	c.enrich(ctx, enricher, fresh)

	outcome.Status = models.PageOK
	outcome.RecordsYielded = len(fresh)
	log.Info("📦 page done",
		zap.Int("listings", len(listing.Listings)),
		zap.Int("records", len(fresh)),
		zap.Int("duplicates", duplicates),
		zap.Int("rejected", rejected),
	)
	return outcome, fresh
}

// enrich fills RequiredSkills in place. Each worker writes only its own
// index, so listing order is preserved whatever order fetches finish in.
func (c *Controller) enrich(ctx context.Context, enricher *enrich.Enricher, records []models.ListingRecord) {
	ctx, span := c.tracer.Start(ctx, "scraper.Enrich")
	defer span.End()
	span.SetAttributes(telemetry.Int("records", len(records)))

	var g errgroup.Group
	g.SetLimit(c.opts.EnrichWorkers)
	for i := range records {
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			records[i].RequiredSkills = enricher.FetchSkills(ctx, records[i].URL)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Controller) aborted(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "aborted")
	c.log.Warn("❌ run aborted", zap.Error(err))
	return apperrors.RunAborted("run cancelled", err)
}

func firstPageError(o models.PageOutcome, url string) error {
	if o.Status == models.PageFetchError {
		return apperrors.Fetch(fmt.Sprintf("first page %d could not be fetched (%s)", o.PageNumber, url), nil)
	}
	return apperrors.NoRecords(fmt.Sprintf("first page %d has no listing content (%s)", o.PageNumber, url))
}
