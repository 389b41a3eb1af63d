package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Azure/go-ntlmssp"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// PageFetcher retrieves raw portal markup.
// This interface allows for mocking in tests and decoupling from the network layer.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Credentials authenticate against the intranet (IIS, NTLM).
type Credentials struct {
	Domain   string
	User     string
	Password string
}

// Username returns DOMAIN\user, or the bare user when no domain is set.
func (c Credentials) Username() string {
	if c.Domain == "" {
		return c.User
	}
	return c.Domain + config.DomainUserSep + c.User
}

// HTTPFetcher implements PageFetcher over net/http with NTLM negotiation.
type HTTPFetcher struct {
	Client      *http.Client
	Credentials Credentials
}

// NewHTTPFetcher creates a fetcher whose transport answers NTLM/Negotiate
// challenges with creds, and falls back to basic auth otherwise.
func NewHTTPFetcher(creds Credentials) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
			Transport: ntlmssp.Negotiator{
				RoundTripper: &http.Transport{},
			},
		},
		Credentials: creds,
	}
}

// Fetch downloads a portal page.
// It sanitizes the URL for logging purposes to avoid leaking sensitive tokens.
// It enforces a maximum response size limit.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}

	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	safeURL := u.Scheme + "://" + u.Host + u.Path

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, safeURL),
	)

	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	// The negotiator reads the credentials from the basic auth header.
	if f.Credentials.User != "" || f.Credentials.Password != "" {
		req.SetBasicAuth(f.Credentials.Username(), f.Credentials.Password)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus,
			slog.Int(config.LogKeyStatus, resp.StatusCode),
		)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %s as %q", ErrAuthentication, resp.Status, f.Credentials.Username())
		}
		return nil, fmt.Errorf("%w: unexpected status %d %s", ErrHTTP, resp.StatusCode, resp.Status)
	}

	log.Info(config.MsgFetchDone,
		slog.Int64(config.LogKeyLength, resp.ContentLength),
	)

	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, nil
}

// limitedReadCloser wraps an io.Reader (Limited) and the original io.Closer.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

// fetchString downloads url completely.
func fetchString(ctx context.Context, f PageFetcher, url string) (string, error) {
	rc, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(b), nil
}
