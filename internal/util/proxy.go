package util

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NewProxyFunc creates a proxy function based on configuration.
// Hosts matching noProxy (comma-separated suffixes) bypass the proxy.
// If no proxy URLs are provided, falls back to environment variables.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	bypass := splitNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if matchesNoProxy(req.URL.Hostname(), bypass) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// NewHTTPClient builds the shared outbound client used by providers and the fetcher
func NewHTTPClient(timeout time.Duration, httpProxy, httpsProxy, noProxy string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(httpProxy, httpsProxy, noProxy)
	return &http.Client{Timeout: timeout, Transport: transport}
}

func splitNoProxy(noProxy string) []string {
	var out []string
	for _, part := range strings.Split(noProxy, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" && part != "*" {
			part = strings.TrimPrefix(part, "*")
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func matchesNoProxy(host string, bypass []string) bool {
	host = strings.ToLower(host)
	for _, b := range bypass {
		if b == "*" {
			return true
		}
		domain := strings.TrimPrefix(b, ".")
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
