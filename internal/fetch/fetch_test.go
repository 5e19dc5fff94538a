package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "go-jobscout/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher("scout-test/1.0", 5*time.Second)
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "scout-test/1.0", gotUA)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.HTML, "ok")
}

func TestHTTPFetcher_Non2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher("ua", 5*time.Second).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFetch))
}

func TestHTTPFetcher_OversizedBodyIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	f := NewHTTPFetcher("ua", 5*time.Second)
	f.maxBody = 32
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFetch))

	f.maxBody = 64
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.HTML, 64)
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher("ua", 50*time.Millisecond).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFetch))
}

func TestHTTPFetcher_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher("ua", time.Second).Fetch(ctx, srv.URL)
	assert.Error(t, err)
}

func TestHTTPOpener_ReturnsSharedFetcher(t *testing.T) {
	f := NewHTTPFetcher("ua", time.Second)
	s, err := HTTPOpener{Fetcher: f}.Open(context.Background())
	require.NoError(t, err)
	assert.Same(t, f, s)
	assert.NoError(t, s.Close())
}
