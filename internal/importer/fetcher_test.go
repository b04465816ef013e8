package importer_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/importer"
)

// TestHTTPFetcher_Fetch_Success checks headers (User-Agent, Basic Auth) and body integrity.
func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	expectedBody := "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nEND:VCARD"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "Basic auth header should be present")
		assert.Equal(t, "testuser", user)
		assert.Equal(t, "securepass", pass)
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(expectedBody))
	}))
	defer ts.Close()

	rc, err := importer.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "testuser", "securepass")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, expectedBody, string(body))
}

func TestHTTPFetcher_Fetch_NoCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok, "No auth header without credentials")
		_, _ = w.Write([]byte("BEGIN:VCARD\nEND:VCARD"))
	}))
	defer ts.Close()

	rc, err := importer.NewHTTPFetcher().Fetch(context.Background(), ts.URL+"/contacts.vcf?token=secret", "", "")
	require.NoError(t, err)
	_ = rc.Close()
}

func TestHTTPFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"NotFound", http.StatusNotFound, importer.ErrRemoteStatus},
		{"ServerError", http.StatusInternalServerError, importer.ErrRemoteStatus},
		{"Unauthorized", http.StatusUnauthorized, importer.ErrUnauthorized},
		{"Forbidden", http.StatusForbidden, importer.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer ts.Close()

			rc, err := importer.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")

			require.Error(t, err)
			assert.Nil(t, rc)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), strconv.Itoa(tt.statusCode))
		})
	}
}

func TestHTTPFetcher_Fetch_AcceptsVCard(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, config.MimeAcceptVCard, r.Header.Get(config.HeaderAccept))
		_, _ = w.Write([]byte("BEGIN:VCARD\nEND:VCARD"))
	}))
	defer ts.Close()

	rc, err := importer.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
	require.NoError(t, err)
	_ = rc.Close()
}

// TestHTTPFetcher_Fetch_SizeCap checks that an oversized body fails instead of
// being cut short, whether or not the server announces its length.
func TestHTTPFetcher_Fetch_SizeCap(t *testing.T) {
	const limit = 16

	t.Run("Exact size passes", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", limit)))
		}))
		defer ts.Close()

		f := importer.NewHTTPFetcher()
		f.MaxBytes = limit
		rc, err := f.Fetch(context.Background(), ts.URL, "", "")
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()

		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Len(t, body, limit)
	})

	t.Run("Announced length rejected upfront", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", limit+1)))
		}))
		defer ts.Close()

		f := importer.NewHTTPFetcher()
		f.MaxBytes = limit
		rc, err := f.Fetch(context.Background(), ts.URL, "", "")
		assert.ErrorIs(t, err, importer.ErrResponseTooLarge)
		assert.Nil(t, rc)
	})

	t.Run("Chunked body fails while reading", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Flushing before the body is complete forces chunked encoding.
			_, _ = w.Write([]byte(strings.Repeat("a", limit)))
			w.(http.Flusher).Flush()
			_, _ = w.Write([]byte(strings.Repeat("a", limit)))
		}))
		defer ts.Close()

		f := importer.NewHTTPFetcher()
		f.MaxBytes = limit
		rc, err := f.Fetch(context.Background(), ts.URL, "", "")
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()

		body, err := io.ReadAll(rc)
		assert.ErrorIs(t, err, importer.ErrResponseTooLarge)
		assert.Len(t, body, limit, "Only bytes within the cap are returned")
	})
}

// TestHTTPFetcher_Fetch_Timeout ensures the client respects context deadlines.
func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := importer.NewHTTPFetcher().Fetch(ctx, ts.URL, "", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	_, err := importer.NewHTTPFetcher().Fetch(context.Background(), string([]byte{0x7f}), "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrInvalidURL)
}

func TestHTTPFetcher_Fetch_ProtocolSecurity(t *testing.T) {
	for _, u := range []string{"ftp://example.com/file.vcf", "file:///etc/passwd"} {
		_, err := importer.NewHTTPFetcher().Fetch(context.Background(), u, "", "")

		assert.ErrorIs(t, err, importer.ErrUnsupportedScheme, u)
	}
}
