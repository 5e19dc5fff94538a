package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "go-jobscout/internal/errors"
	"go-jobscout/internal/fetch"
	"go-jobscout/internal/metrics"
	"go-jobscout/utils"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

type Options struct {
	Headless      bool
	UserAgent     string
	Timeout       time.Duration
	SettleDelay   time.Duration
	MaxPages      int
	ScreenshotDir string
	Scroll        bool
}

// PlaywrightManager owns one Chromium instance for the lifetime of a run.
// Every Fetch opens its own page and closes it before returning.
type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	opts    Options
	log     *zap.Logger
	shots   *utils.ScreenshotDebugger

	sem       chan struct{}
	closeOnce sync.Once
	closeErr  error
	stop      func() bool
}

func NewPlaywright(ctx context.Context, opts Options, log *zap.Logger) (*PlaywrightManager, error) {
	if opts.MaxPages < 1 {
		opts.MaxPages = 1
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, apperrors.Fetch("start playwright", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, apperrors.Fetch("launch chromium", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(opts.UserAgent),
		Viewport:  &playwright.Size{Width: 1366, Height: 768},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, apperrors.Fetch("create browser context", err)
	}

	pm := &PlaywrightManager{
		pw:      pw,
		browser: browser,
		context: bctx,
		opts:    opts,
		log:     log,
		sem:     make(chan struct{}, opts.MaxPages),
	}
	if opts.ScreenshotDir != "" {
		pm.shots = utils.NewScreenshotDebugger(opts.ScreenshotDir, log)
	}

	//run cancelled: tear the browser down so pending navigations return
	pm.stop = context.AfterFunc(ctx, func() {
		_ = pm.shutdown()
	})
	return pm, nil
}

func (pm *PlaywrightManager) Fetch(ctx context.Context, url string) (*fetch.Page, error) {
	select {
	case pm.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, apperrors.Fetch("waiting for browser page", ctx.Err())
	}
	defer func() { <-pm.sem }()

	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues("browser").Observe(time.Since(start).Seconds())
	}()

	page, err := pm.context.NewPage()
	if err != nil {
		return nil, apperrors.Fetch("open page", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			pm.log.Debug("close page", zap.Error(err))
		}
	}()

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(pm.opts.Timeout.Milliseconds())),
	})
	if err != nil {
		pm.capture(page, "goto-failed", url)
		return nil, apperrors.Fetch("navigate to "+url, err)
	}

	status := 0
	if resp != nil {
		status = resp.Status()
		if status < 200 || status > 299 {
			pm.capture(page, "bad-status", url)
			return nil, apperrors.Fetch(fmt.Sprintf("%s returned status %d", url, status), nil)
		}
	}

	if pm.opts.Scroll {
		if err := HumanScroll(ctx, page); err != nil {
			pm.log.Debug("scroll failed", zap.String("url", url), zap.Error(err))
		}
	}

	//late client-side rendering
	if err := utils.Sleep(ctx, pm.opts.SettleDelay); err != nil {
		return nil, apperrors.Fetch("settle "+url, err)
	}

	html, err := page.Content()
	if err != nil {
		return nil, apperrors.Fetch("read content of "+url, err)
	}
	return &fetch.Page{URL: url, HTML: html, StatusCode: status}, nil
}

func (pm *PlaywrightManager) capture(page playwright.Page, name, url string) {
	if pm.shots == nil {
		return
	}
	_ = pm.shots.CaptureAndLog(page, name, "fetch failed for "+url)
}

// Close releases the browser. Safe to call more than once.
func (pm *PlaywrightManager) Close() error {
	if pm.stop != nil {
		pm.stop()
	}
	return pm.shutdown()
}

func (pm *PlaywrightManager) shutdown() error {
	pm.closeOnce.Do(func() {
		if err := pm.browser.Close(); err != nil {
			pm.closeErr = err
		}
		if err := pm.pw.Stop(); err != nil && pm.closeErr == nil {
			pm.closeErr = err
		}
	})
	return pm.closeErr
}

// Opener launches a fresh browser per run.
type Opener struct {
	Options Options
	Log     *zap.Logger
}

func (o Opener) Open(ctx context.Context) (fetch.Session, error) {
	return NewPlaywright(ctx, o.Options, o.Log)
}
