package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
	"github.com/sammaes/SiouxBelgiumParser/internal/engine"
)

var testCreds = engine.Credentials{Domain: "SIOUX", User: "jdoe", Password: "securepass"}

func TestCredentials_Username(t *testing.T) {
	assert.Equal(t, `SIOUX\jdoe`, testCreds.Username())
	assert.Equal(t, "jdoe", engine.Credentials{User: "jdoe"}.Username())
}

// TestHTTPFetcher_Fetch_Success verifies the download flow against a server
// that only offers basic auth: the negotiator first tries anonymously, then
// retries with the credentials.
func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	expectedBody := "<html><body>agenda</body></html>"
	attempts := 0

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent), "User-Agent mismatch")

		user, pass, ok := r.BasicAuth()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, `SIOUX\jdoe`, user, "Username mismatch")
		assert.Equal(t, "securepass", pass, "Password mismatch")

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(expectedBody))
	}))
	defer ts.Close()

	fetcher := engine.NewHTTPFetcher(testCreds)
	rc, err := fetcher.Fetch(context.Background(), ts.URL)

	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, expectedBody, string(b))
	assert.Equal(t, 2, attempts)
}

// TestHTTPFetcher_Fetch_Errors verifies the error taxonomy for non-200 statuses.
func TestHTTPFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"NotFound", http.StatusNotFound, engine.ErrHTTP},
		{"ServerError", http.StatusInternalServerError, engine.ErrHTTP},
		{"Unauthorized", http.StatusUnauthorized, engine.ErrAuthentication},
		{"Forbidden", http.StatusForbidden, engine.ErrAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer ts.Close()

			fetcher := engine.NewHTTPFetcher(testCreds)
			rc, err := fetcher.Fetch(context.Background(), ts.URL)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, rc)
		})
	}
}

// TestHTTPFetcher_Fetch_Timeout ensures the client respects context deadlines.
func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	fetcher := engine.NewHTTPFetcher(engine.Credentials{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := fetcher.Fetch(ctx, ts.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "Should return context deadline exceeded error")
}

func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	fetcher := engine.NewHTTPFetcher(testCreds)

	_, err := fetcher.Fetch(context.Background(), string([]byte{0x7f}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrInvalidURL)
}

func TestHTTPFetcher_Fetch_ProtocolSecurity(t *testing.T) {
	fetcher := engine.NewHTTPFetcher(testCreds)

	_, err := fetcher.Fetch(context.Background(), "ftp://intranet.example/Events.aspx")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrProtocol)
}
