package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

// Fetch failures callers branch on. They are always wrapped, so test with
// errors.Is.
var (
	ErrUnsupportedScheme = errors.New(config.ErrProtocol)
	ErrUnauthorized      = errors.New(config.ErrUnauthorized)
	ErrRemoteStatus      = errors.New(config.ErrHTTPStatus)
	ErrResponseTooLarge  = errors.New(config.ErrResponseTooLarge)
)

// VCardFetcher retrieves a remote vCard stream.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads address books from a CardDAV export or any plain
// HTTP(S) URL serving a .vcf stream, with optional basic auth.
type HTTPFetcher struct {
	Client *http.Client

	// MaxBytes caps the body. Zero means config.MaxHTTPResponseSize.
	MaxBytes int64
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// Fetch only accepts http and https URLs. Query strings are never logged
// because address book exports commonly carry an access token there.
//
// A 401 or 403 maps to ErrUnauthorized so the tray and the CLI can point the
// user at the stored password instead of a generic failure. Any other non-200
// status maps to ErrRemoteStatus.
//
// The body is capped at MaxBytes. Going past the cap is an error rather than
// a silent truncation: a cut stream still parses, and the import would then
// look successful while missing every contact after the cut.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)
	log.Debug(config.MsgDownloadStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeAcceptVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}

	if err := checkStatus(resp); err != nil {
		_ = resp.Body.Close()
		log.Warn(config.MsgDownloadStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, err
	}

	limit := f.limit()
	if resp.ContentLength > limit {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrResponseTooLarge, resp.ContentLength, limit)
	}

	log.Info(config.MsgDownloading, slog.Int64(config.LogKeySizeBytes, resp.ContentLength))

	return &cappedBody{body: resp.Body, remaining: limit}, nil
}

func (f *HTTPFetcher) limit() int64 {
	if f.MaxBytes > 0 {
		return f.MaxBytes
	}
	return config.MaxHTTPResponseSize
}

func checkStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	default:
		return fmt.Errorf("%w: %s", ErrRemoteStatus, resp.Status)
	}
}

// cappedBody fails with ErrResponseTooLarge once more than remaining bytes
// have been read. Chunked responses carry no Content-Length, so this is the
// only place their size is enforced.
type cappedBody struct {
	body      io.ReadCloser
	remaining int64
}

func (c *cappedBody) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, ErrResponseTooLarge
	}
	// Ask for one byte past the cap so an exact-size body still reads cleanly
	// while a larger one trips the check.
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.body.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n + int(c.remaining), ErrResponseTooLarge
	}
	return n, err
}

func (c *cappedBody) Close() error {
	return c.body.Close()
}
