package browser

import (
	"context"
	"math/rand"
	"time"

	"go-jobscout/utils"

	"github.com/playwright-community/playwright-go"
)

// HumanScroll scrolls down in steps so lazy-loaded listings render, then
// nudges back up a little.
func HumanScroll(ctx context.Context, page playwright.Page) error {
	for i := 0; i < 4; i++ {
		if _, err := page.Evaluate("window.scrollBy(0, window.innerHeight / 2)"); err != nil {
			return err
		}
		if err := utils.RandomDelay(ctx, 200*time.Millisecond, 600*time.Millisecond); err != nil {
			return err
		}
	}
	if err := MouseJiggle(ctx, page); err != nil {
		return err
	}
	_, err := page.Evaluate("window.scrollBy(0, -200)")
	return err
}

// MouseJiggle moves the mouse to a few random points inside the viewport.
func MouseJiggle(ctx context.Context, page playwright.Page) error {
	viewport := page.ViewportSize()
	if viewport == nil || viewport.Width == 0 || viewport.Height == 0 {
		return nil
	}
	for i := 0; i < 2; i++ {
		x := float64(rand.Intn(viewport.Width))
		y := float64(rand.Intn(viewport.Height))
		if err := page.Mouse().Move(x, y); err != nil {
			return err
		}
		if err := utils.RandomDelay(ctx, 100*time.Millisecond, 300*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}
