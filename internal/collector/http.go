package collector

import (
	"net/http"
	"net/url"
	"time"
)

const requestTimeout = 30 * time.Second

// newHTTPClient creates a client with optional proxy support and cookie jar.
func newHTTPClient(proxyURL string, jar http.CookieJar) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   requestTimeout,
		Transport: transport,
		Jar:       jar,
	}
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
