// AngelaMos | 2026
// checker.go

package verifier

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Checker reports whether a URL currently resolves. status is 0 when no
// response was received.
type Checker interface {
	Check(ctx context.Context, rawURL string) (ok bool, status int)
}

type CheckerConfig struct {
	Timeout      time.Duration
	UserAgent    string
	PerHostRate  float64
	PerHostBurst int
}

// HTTPChecker issues HEAD requests and falls back to a one-byte ranged GET
// for servers that refuse HEAD. Redirects are not followed; any 2xx or 3xx
// counts as reachable. Requests to the same host share a token bucket.
type HTTPChecker struct {
	client *http.Client
	cfg    CheckerConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewHTTPChecker(cfg CheckerConfig, transport http.RoundTripper) *HTTPChecker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.PerHostRate <= 0 {
		cfg.PerHostRate = 2
	}
	if cfg.PerHostBurst <= 0 {
		cfg.PerHostBurst = 4
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "stackrec-verifier/1.0"
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &HTTPChecker{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (c *HTTPChecker) Check(ctx context.Context, rawURL string) (bool, int) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false, 0
	}

	if err := c.limiter(u.Host).Wait(ctx); err != nil {
		return false, 0
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	status, err := c.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return false, 0
	}

	switch status {
	case http.StatusForbidden, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		status, err = c.do(ctx, http.MethodGet, rawURL)
		if err != nil {
			return false, 0
		}
	}

	return status >= 200 && status < 400, status
}

func (c *HTTPChecker) do(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close() //nolint:errcheck // body is never read

	return resp.StatusCode, nil
}

func (c *HTTPChecker) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.cfg.PerHostRate), c.cfg.PerHostBurst)
		c.limiters[host] = l
	}
	return l
}
