// Package fetch retrieves raw HTML for listing and detail pages.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "go-jobscout/internal/errors"
	"go-jobscout/internal/metrics"
)

// Page is a fetched document. HTML is the rendered markup; StatusCode is
// zero when the transport does not report one.
type Page struct {
	URL        string
	HTML       string
	StatusCode int
}

// Fetcher retrieves one URL. Failures are reported as FETCH_ERROR domain
// errors and never panic.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Session is a Fetcher bound to one crawl run. Close releases whatever the
// session holds (browser, pages) and is safe to call more than once.
type Session interface {
	Fetcher
	Close() error
}

// Opener creates a Session at the start of a run.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

const maxBodyBytes = 8 << 20

// HTTPFetcher fetches static HTML with a plain HTTP client.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		maxBody:   maxBodyBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Fetch("build request for "+url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.Fetch("request "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Fetch(fmt.Sprintf("%s returned status %d", url, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, apperrors.Fetch("read body of "+url, err)
	}
	//a cut page would parse as a short listing page, fail it instead
	if int64(len(body)) > f.maxBody {
		return nil, apperrors.Fetch(fmt.Sprintf("%s body exceeds %d bytes", url, f.maxBody), nil)
	}

	return &Page{URL: url, HTML: string(body), StatusCode: resp.StatusCode}, nil
}

// Close is a no-op; the HTTP client has no per-run state.
func (f *HTTPFetcher) Close() error {
	return nil
}

// HTTPOpener hands the same HTTPFetcher to every run.
type HTTPOpener struct {
	Fetcher *HTTPFetcher
}

func (o HTTPOpener) Open(context.Context) (Session, error) {
	return o.Fetcher, nil
}
