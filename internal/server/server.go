// Package server publishes the birthday iCalendar feed on localhost so that
// calendar clients can subscribe to it.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

// feedSnapshot is one published rendering of the feed with its cache validators.
type feedSnapshot struct {
	data         []byte
	etag         string
	lastModified string // RFC1123, as HTTP requires
}

// FeedServer serves the latest published feed. Publishing swaps an immutable
// snapshot, so handlers never observe a partial update.
type FeedServer struct {
	Port string

	current atomic.Pointer[feedSnapshot]

	mu   sync.Mutex
	addr net.Addr
}

func NewFeedServer(port string) *FeedServer {
	return &FeedServer{Port: port}
}

// Handler exposes the feed routes, for embedding or testing.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteFeed, s.serveFeed)
	mux.HandleFunc(config.RouteRoot, s.serveFeed)
	return mux
}

// Addr returns the bound address once Start is listening, or nil.
func (s *FeedServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start listens on localhost and blocks until ctx is cancelled or serving fails.
// Port "0" binds an ephemeral port, reported by Addr.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	ln, err := net.Listen("tcp", config.LocalhostBindAddr+config.AddrSeparator+s.Port)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serveErr := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, ln.Addr().String(),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serveErr:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update publishes a new rendering of the feed.
func (s *FeedServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	snap := &feedSnapshot{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.current.Store(snap)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, snap.etag,
	)
}

func (s *FeedServer) serveFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	snap := s.current.Load()
	if snap == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, snap.etag)
	h.Set(config.HeaderLastModified, snap.lastModified)

	if notModified(r, snap) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(snap.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// notModified evaluates If-None-Match first, then If-Modified-Since.
func notModified(r *http.Request, snap *feedSnapshot) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == snap.etag
	}

	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, snap.lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
