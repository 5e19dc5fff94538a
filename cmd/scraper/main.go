package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go-jobscout/internal/app"
	"go-jobscout/internal/config"
	apperrors "go-jobscout/internal/errors"
	"go-jobscout/internal/logger"
	"go-jobscout/internal/models"
	"go-jobscout/internal/runs"
	"go-jobscout/internal/telegram"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	keyword := flag.String("keyword", "", "search keyword (empty for all)")
	city := flag.String("city", "", "city filter (empty for any)")
	kind := flag.String("kind", "internship", "internship or job")
	maxPages := flag.Int("max-pages", 1, "walk pages 1..N")
	startPage := flag.Int("start-page", 0, "first page of an explicit range")
	endPage := flag.Int("end-page", 0, "last page of an explicit range")
	format := flag.String("format", "", "export format: xlsx, csv or pdf (default from config)")
	notify := flag.Bool("telegram", false, "send a run summary to the configured Telegram chat")
	flag.Parse()

	//load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	zlog, err := logger.New(cfg.LogFile, cfg.LogLevel, "jobscout-cli")
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	maxPagesSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "max-pages" {
			maxPagesSet = true
		}
	})
	q, err := buildQuery(queryFlags{
		keyword:     *keyword,
		city:        *city,
		kind:        *kind,
		maxPages:    *maxPages,
		maxPagesSet: maxPagesSet,
		startPage:   *startPage,
		endPage:     *endPage,
	})
	if err != nil {
		zlog.Fatal("❌ Invalid query", zap.Error(err))
	}

	pipeline, err := app.NewPipeline(cfg, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to build pipeline", zap.Error(err))
	}

	//setup context with the configured run timeout, cancelled on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	var bot *telegram.Bot
	if *notify {
		if cfg.TelegramToken == "" {
			zlog.Fatal("❌ -telegram set but no token configured")
		}
		bot, err = telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			zlog.Fatal("❌ Failed to init Telegram Bot", zap.Error(err))
		}
		zlog.Info("🤖 Telegram Bot initialized.")
		if err := bot.SendStatus(fmt.Sprintf("Crawl started: %q in %q", q.Keyword, q.City)); err != nil {
			zlog.Warn("⚠️ Failed to send Telegram status", zap.Error(err))
		}
	}

	zlog.Info("🚀 Starting crawl", zap.String("keyword", q.Keyword), zap.String("city", q.City), zap.String("kind", string(q.Kind)))
	started := time.Now()

	result, err := pipeline.Controller.Run(ctx, q)
	if err != nil {
		if bot != nil {
			_ = bot.SendError(err)
		}
		zlog.Fatal("❌ Crawl failed", zap.Error(err))
	}

	exportFormat := cfg.ExportFormat
	if *format != "" {
		exportFormat = *format
	}
	path, err := pipeline.Exporter.ExportAs(q, result, exportFormat)
	if err != nil {
		zlog.Error("❌ Export failed", zap.Error(err))
	}

	printSummary(result, path, time.Since(started))

	if bot != nil {
		finished := time.Now().UTC()
		run := &runs.Run{ID: "cli", Query: q, Status: runs.StatusCompleted, Result: result, ExportPath: path, FinishedAt: &finished}
		if err := bot.Notify(context.Background(), run); err != nil {
			zlog.Error("❌ Failed to send Telegram summary", zap.Error(err))
		}
	}
}

type queryFlags struct {
	keyword, city, kind string
	maxPages            int
	maxPagesSet         bool
	startPage, endPage  int
}

// buildQuery turns the flags into a validated query. An explicit -max-pages
// next to a page range is rejected like the API does; the flag default alone
// gives way to the range.
func buildQuery(f queryFlags) (models.SearchQuery, error) {
	kind, err := models.ParseListingKind(f.kind)
	if err != nil {
		return models.SearchQuery{}, apperrors.InvalidInput("invalid kind", err)
	}
	q := models.SearchQuery{Keyword: f.keyword, City: f.city, Kind: kind, MaxPages: f.maxPages}
	if f.startPage != 0 || f.endPage != 0 {
		if f.maxPagesSet {
			return models.SearchQuery{}, apperrors.InvalidInput("-max-pages cannot be combined with -start-page/-end-page", nil)
		}
		start, end := f.startPage, f.endPage
		if start == 0 {
			start = 1
		}
		if end == 0 {
			end = start
		}
		q.MaxPages = 0
		q.Range = &models.PageRange{Start: start, End: end}
	}
	if err := q.Validate(); err != nil {
		return models.SearchQuery{}, apperrors.InvalidInput("invalid query", err)
	}
	return q, nil
}

func printSummary(result *models.RunResult, path string, took time.Duration) {
	fmt.Printf("\nTotal listings found: %d\n", len(result.Records))
	fmt.Printf("Total pages processed: %d\n", result.PagesProcessed)
	if len(result.SkippedPages) > 0 {
		skipped := make([]string, len(result.SkippedPages))
		for i, p := range result.SkippedPages {
			skipped[i] = fmt.Sprint(p)
		}
		fmt.Printf("Skipped pages: %s\n", strings.Join(skipped, ", "))
	}
	if path != "" {
		fmt.Printf("Saved to: %s\n", path)
	}
	fmt.Printf("Took: %s\n", took.Round(time.Millisecond))
}
