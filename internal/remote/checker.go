package remote

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-blog-intake/internal/logging"
	"github.com/goliatone/go-blog-intake/internal/policy"
	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

const (
	defaultProbeTimeout = 5 * time.Second
	defaultFetchTimeout = 30 * time.Second
	rawFetchSuffix      = "?raw=true"
)

// Config wires the checker dependencies. The HTTP client is injected so
// tests can point the checker at a local server.
type Config struct {
	Policy       policy.Policy
	HTTPClient   *http.Client
	ProbeTimeout time.Duration
	FetchTimeout time.Duration
	Logger       interfaces.Logger
}

// Checker verifies that a declared image URL resolves to an actual image of
// acceptable type and size. Failures of any kind - network errors, timeouts,
// wrong types, oversized bodies - are reported as "not acceptable", never
// propagated: a broken URL is a validation outcome, not a crash.
type Checker struct {
	policy       policy.Policy
	client       *http.Client
	probeTimeout time.Duration
	fetchTimeout time.Duration
	logger       interfaces.Logger
}

// NewChecker builds a checker from the supplied configuration.
func NewChecker(cfg Config) *Checker {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	probe := cfg.ProbeTimeout
	if probe <= 0 {
		probe = defaultProbeTimeout
	}
	fetch := cfg.FetchTimeout
	if fetch <= 0 {
		fetch = defaultFetchTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Checker{
		policy:       cfg.Policy,
		client:       client,
		probeTimeout: probe,
		fetchTimeout: fetch,
		logger:       logger,
	}
}

// RawURL canonicalises a trusted upload URL to its raw-fetch form. URLs
// outside the trusted origin are returned unchanged.
func RawURL(url string) string {
	if strings.HasSuffix(url, rawFetchSuffix) {
		return url
	}
	if strings.HasPrefix(url, "https://github.com/user-attachments/assets/") {
		return url + rawFetchSuffix
	}
	return url
}

// IsAcceptableImage reports whether url resolves to an image within the
// policy size cap. A metadata-only probe runs first; when the origin refuses
// it or answers with a redirect, the checker falls back to a full fetch.
func (c *Checker) IsAcceptableImage(ctx context.Context, url string) bool {
	target := RawURL(url)

	ok, verified := c.probe(ctx, target)
	if verified {
		return ok
	}
	return c.fetch(ctx, target)
}

// probe issues the lightweight HEAD request. The second return value reports
// whether the probe produced a definitive answer; false means fall back to a
// full fetch.
func (c *Checker) probe(ctx context.Context, url string) (acceptable bool, verified bool) {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		return false, true
	}

	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("remote.probe.failed", "url", url, "error", err)
		return false, true
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusMethodNotAllowed || res.StatusCode == http.StatusForbidden:
		// Origin refuses metadata-only requests; a full fetch decides.
		return false, false
	case res.StatusCode >= 300 && res.StatusCode < 400:
		return false, false
	case res.StatusCode < 200 || res.StatusCode >= 300:
		return false, true
	}

	if !isImageContentType(res.Header.Get("Content-Type")) {
		return false, true
	}

	if res.ContentLength < 0 {
		// No size header; only a full fetch can measure the body.
		return false, false
	}
	return res.ContentLength <= c.policy.MaxImageBytes, true
}

// fetch downloads the body to verify type and measure size. Reading stops at
// one byte past the cap, which is enough to disqualify oversized images
// without buffering them whole.
func (c *Checker) fetch(ctx context.Context, url string) bool {
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("remote.fetch.failed", "url", url, "error", err)
		return false
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return false
	}
	if !isImageContentType(res.Header.Get("Content-Type")) {
		return false
	}

	size, err := io.Copy(io.Discard, io.LimitReader(res.Body, c.policy.MaxImageBytes+1))
	if err != nil {
		c.logger.Debug("remote.fetch.read_failed", "url", url, "error", err)
		return false
	}
	return size <= c.policy.MaxImageBytes
}

func isImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.TrimSpace(contentType), "image/")
}
