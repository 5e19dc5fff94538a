package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// ScreenshotDebugger saves full-page screenshots of pages that failed to load.
type ScreenshotDebugger struct {
	outputDir string
	log       *zap.Logger
}

func NewScreenshotDebugger(dir string, log *zap.Logger) *ScreenshotDebugger {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warn("failed to create screenshot dir", zap.String("dir", dir), zap.Error(err))
	}
	return &ScreenshotDebugger{
		outputDir: dir,
		log:       log,
	}
}

func (s *ScreenshotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	path := filepath.Join(s.outputDir, ScreenshotName(name, time.Now()))

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		s.log.Warn("failed to capture screenshot", zap.String("name", name), zap.Error(err))
		return err
	}

	s.log.Info(message, zap.String("screenshot", path))
	return nil
}

// ScreenshotName builds "<name>_<timestamp>.png" with path separators removed.
func ScreenshotName(name string, at time.Time) string {
	name = strings.NewReplacer("/", "-", "\\", "-", " ", "-").Replace(name)
	return fmt.Sprintf("%s_%s.png", name, at.Format("2006-01-02_15-04-05"))
}
