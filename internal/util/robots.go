package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsChecker answers robots.txt questions for corpus URLs, caching rules per host
type RobotsChecker struct {
	rules      *gocache.Cache
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// NewRobotsChecker creates a checker. Rules are cached for ttl.
func NewRobotsChecker(httpClient *http.Client, userAgent string, ttl time.Duration, logger *zap.Logger) *RobotsChecker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RobotsChecker{
		rules:      gocache.New(ttl, 2*ttl),
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     OrNop(logger),
	}
}

// CanFetch reports whether rawURL may be fetched and the crawl delay to honour
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return false, 0, fmt.Errorf("no host in %q", rawURL)
	}

	data, err := r.rulesFor(ctx, parsed)
	if err != nil {
		// unreachable robots.txt: allow
		r.logger.Debug("robots.txt unavailable", zap.String("host", parsed.Host), zap.Error(err))
		return true, 0, nil
	}

	agent := NormalizeUserAgent(r.userAgent)
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	allowed := data.TestAgent(path, agent)

	var crawlDelay time.Duration
	if group := data.FindGroup(agent); group != nil {
		crawlDelay = group.CrawlDelay
	}

	return allowed, crawlDelay, nil
}

func (r *RobotsChecker) rulesFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	if cached, ok := r.rules.Get(u.Host); ok {
		return cached.(*robotstxt.RobotsData), nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.rules.SetDefault(u.Host, data)
	return data, nil
}

// Clear drops all cached rules
func (r *RobotsChecker) Clear() {
	r.rules.Flush()
}

// NormalizeUserAgent reduces "BrandGuard/1.0 (+url)" to "BrandGuard" for group matching
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
