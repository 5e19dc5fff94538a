package scraper

import "go-jobscout/internal/models"

// Finalize assembles a RunResult. Records keep first-seen order and nil
// slices become empty ones so callers always see arrays.
func Finalize(records []models.ListingRecord, pagesProcessed int, skippedPages []int) *models.RunResult {
	if records == nil {
		records = []models.ListingRecord{}
	}
	if skippedPages == nil {
		skippedPages = []int{}
	}
	return &models.RunResult{
		Records:        records,
		PagesProcessed: pagesProcessed,
		SkippedPages:   skippedPages,
	}
}
