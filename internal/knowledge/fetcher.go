package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/brandguard/internal/util"
	"github.com/ppiankov/brandguard/internal/worker"
	"go.uber.org/zap"
)

// ErrDisallowed is returned when robots.txt forbids a URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// FetchResult is a fetched corpus page
type FetchResult struct {
	Body        []byte
	ContentType string
	FinalURL    string
	StatusCode  int
}

// Fetcher downloads corpus pages, honouring robots.txt and a per-domain rate limit
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	logger     *zap.Logger
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithRobots enables robots.txt checks
func WithRobots(r *util.RobotsChecker) FetcherOption {
	return func(f *Fetcher) { f.robots = r }
}

// WithRateLimit throttles requests per domain
func WithRateLimit(l *worker.Limiter) FetcherOption {
	return func(f *Fetcher) { f.limiter = l }
}

// WithFetchLogger sets the fetcher logger
func WithFetchLogger(logger *zap.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = util.OrNop(logger) }
}

// NewFetcher creates a fetcher. Redirect chains longer than 3 are refused.
func NewFetcher(httpClient *http.Client, userAgent string, maxBytes int64, opts ...FetcherOption) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	client := *httpClient
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}

	f := &Fetcher{
		httpClient: &client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
		if f.limiter != nil {
			domain, err := worker.DomainKey(rawURL)
			if err != nil {
				return nil, err
			}
			if err := f.limiter.WaitWithDelay(ctx, domain, delay); err != nil {
				return nil, err
			}
		}
	} else if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain,text/markdown,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	f.logger.Debug("fetched", zap.String("url", rawURL), zap.Int("bytes", len(body)))

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
	}, nil
}

// Extension maps the response content type to the file extension used for text extraction
func (r *FetchResult) Extension() string {
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		mediaType = strings.ToLower(r.ContentType)
	}
	switch mediaType {
	case "application/pdf":
		return ".pdf"
	case "text/plain":
		return ".txt"
	case "text/markdown", "text/x-markdown":
		return ".md"
	default:
		return ".html"
	}
}
