package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

// -----------------------------------------------------------------------------
// Handler Tests
// -----------------------------------------------------------------------------

func serve(srv *FeedServer, req *http.Request) *http.Response {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w.Result()
}

func TestHandler_ServesFeedOnBothRoutes(t *testing.T) {
	srv := NewFeedServer("0")
	feed := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	srv.Update(feed)

	for _, route := range []string{config.RouteRoot, config.RouteFeed} {
		t.Run(route, func(t *testing.T) {
			resp := serve(srv, httptest.NewRequest(http.MethodGet, route, nil))
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
			assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
			assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
			assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
			assert.NotEmpty(t, resp.Header.Get(config.HeaderLastModified))

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, feed, body)
		})
	}
}

func TestHandler_HeadHasNoBody(t *testing.T) {
	srv := NewFeedServer("0")
	srv.Update([]byte("BEGIN:VCALENDAR"))

	resp := serve(srv, httptest.NewRequest(http.MethodHead, config.RouteFeed, nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestHandler_ETagRevalidation(t *testing.T) {
	srv := NewFeedServer("0")
	srv.Update([]byte("DATA_VERSION_1"))

	first := serve(srv, httptest.NewRequest(http.MethodGet, config.RouteFeed, nil))
	etag := first.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	req := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
	req.Header.Set(config.HeaderIfNoneMatch, etag)
	resp := serve(srv, req)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")

	// A new publication invalidates the old validator.
	srv.Update([]byte("DATA_VERSION_2"))
	resp = serve(srv, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_IfModifiedSince(t *testing.T) {
	srv := NewFeedServer("0")
	srv.Update([]byte("DATA"))

	tests := []struct {
		name  string
		since string
		want  int
	}{
		{"Client is up to date", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat), http.StatusNotModified},
		{"Client is stale", time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat), http.StatusOK},
		{"Unparseable header", "yesterday", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, config.RouteFeed, nil)
			req.Header.Set(config.HeaderIfModifiedSince, tt.since)
			assert.Equal(t, tt.want, serve(srv, req).StatusCode)
		})
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := NewFeedServer("0")
	srv.Update([]byte("DATA"))

	resp := serve(srv, httptest.NewRequest(http.MethodPost, config.RouteFeed, nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
}

func TestHandler_NotYetPublished(t *testing.T) {
	srv := NewFeedServer("0")

	resp := serve(srv, httptest.NewRequest(http.MethodGet, config.RouteFeed, nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

// -----------------------------------------------------------------------------
// Concurrency
// -----------------------------------------------------------------------------

// Run with -race: publications and reads interleave freely.
func TestServer_ConcurrentPublishAndServe(t *testing.T) {
	srv := NewFeedServer("0")
	handler := srv.Handler()
	var wg sync.WaitGroup
	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				srv.Update([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				time.Sleep(time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 16; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteFeed, nil))
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("unexpected status code: %d", w.Code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func TestServer_Lifecycle(t *testing.T) {
	srv := NewFeedServer("0")
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, 2*time.Second, 10*time.Millisecond,
		"Server failed to bind in time")
	url := "http://" + srv.Addr().String() + config.RouteFeed

	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	srv.Update([]byte(config.StubVCalendar))

	resp, err = http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.StubVCalendar, string(body))

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shut down gracefully")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_StartRequiresPort(t *testing.T) {
	err := NewFeedServer("").Start(context.Background())
	assert.EqualError(t, err, config.ErrPortRequired)
}
