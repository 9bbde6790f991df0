package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// MaxRetryDelay caps the backoff between retries.
	MaxRetryDelay = 30 * time.Second

	// maxErrorBody bounds how much of an error body is kept in APIError.
	maxErrorBody = 512
)

// Client issues authenticated JSON GET requests against one API base URL.
type Client struct {
	http        *http.Client
	baseURL     *url.URL
	rateLimiter *RateLimiter
}

type options struct {
	tokenSource  oauth2.TokenSource
	headerName   string
	headerValue  string
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	timeout      time.Duration
	rps          float64
	burst        int
	base         http.RoundTripper
}

// Option configures a Client.
type Option func(*options)

// WithTokenSource authenticates requests with OAuth bearer tokens.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) { o.tokenSource = ts }
}

// WithHeader authenticates requests with a static header, e.g. "Authorization: SSWS <token>".
func WithHeader(name, value string) Option {
	return func(o *options) {
		o.headerName = name
		o.headerValue = value
	}
}

// WithRetry overrides the retry policy.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		o.retryMax = max
		o.retryWaitMin = waitMin
		o.retryWaitMax = waitMax
	}
}

// WithRateLimit overrides the proactive throttle.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rps = rps
		o.burst = burst
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport sets the innermost transport. Useful for testing.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	o := newOptions(opts)
	return &Client{
		http:        o.httpClient(),
		baseURL:     u,
		rateLimiter: NewRateLimiter(o.rps, o.burst),
	}, nil
}

// NewHTTPClient returns the retrying, authenticating http.Client that New
// builds, for SDKs that accept their own *http.Client. Rate limit options
// are ignored.
func NewHTTPClient(opts ...Option) *http.Client {
	return newOptions(opts).httpClient()
}

func newOptions(opts []Option) options {
	o := options{
		retryMax:     MaxRetries,
		retryWaitMin: RetryDelay,
		retryWaitMax: MaxRetryDelay,
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) httpClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = o.retryMax
	rc.RetryWaitMin = o.retryWaitMin
	rc.RetryWaitMax = o.retryWaitMax
	rc.Logger = nil
	if o.base != nil {
		rc.HTTPClient.Transport = o.base
	}
	// Keep the final response so the caller can classify it.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	var transport http.RoundTripper = &retryablehttp.RoundTripper{Client: rc}
	switch {
	case o.tokenSource != nil:
		transport = &oauth2.Transport{Source: o.tokenSource, Base: transport}
	case o.headerName != "":
		transport = &headerTransport{name: o.headerName, value: o.headerValue, base: transport}
	}
	return &http.Client{Transport: transport, Timeout: o.timeout}
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// GetJSON fetches path relative to the base URL and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.GetPage(ctx, c.Resolve(path, query), out)
	return err
}

// GetPage fetches an absolute URL, decodes the body into out, and returns
// the next page URL from the Link header. URLs outside the base URL's scheme
// and host are refused with ErrForeignURL so credentials stay on the API host.
func (c *Client) GetPage(ctx context.Context, rawURL string, out any) (string, error) {
	if err := c.checkOrigin(rawURL); err != nil {
		return "", err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromResponse(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", &RateLimitError{ResetAt: c.rateLimiter.ResetTime(), Remaining: 0}
		}
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			URL:        rawURL,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return "", fmt.Errorf("decode %s: %w", rawURL, err)
		}
	}
	return ParseNextLink(resp.Header.Get("Link")), nil
}

func (c *Client) checkOrigin(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse %q: %w", rawURL, err)
	}
	if !strings.EqualFold(u.Scheme, c.baseURL.Scheme) || !strings.EqualFold(u.Host, c.baseURL.Host) {
		return fmt.Errorf("%w: %s://%s is not %s://%s", ErrForeignURL, u.Scheme, u.Host, c.baseURL.Scheme, c.baseURL.Host)
	}
	return nil
}

// Resolve builds an absolute URL for path with query.
func (c *Client) Resolve(path string, query url.Values) string {
	u := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimLeft(path, "/")})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// ListLinked follows Link header pagination over endpoints returning JSON
// arrays. A positive limit stops once that many items were collected. An
// empty page ends the listing, since polling endpoints always link onwards.
func ListLinked[T any](ctx context.Context, c *Client, path string, query url.Values, limit int) ([]T, error) {
	var all []T
	next := c.Resolve(path, query)
	for next != "" {
		var page []T
		n, err := c.GetPage(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		next = n
	}
	return all, nil
}

// ListOData follows @odata.nextLink pagination. A positive limit stops once
// that many items were collected.
func ListOData[T any](ctx context.Context, c *Client, path string, query url.Values, limit int) ([]T, error) {
	var all []T
	next := c.Resolve(path, query)
	for next != "" {
		var page ODataPage[T]
		if _, err := c.GetPage(ctx, next, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Value...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		next = page.NextLink
	}
	return all, nil
}

// headerTransport sets a static authentication header on every request.
type headerTransport struct {
	name  string
	value string
	base  http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(t.name, t.value)
	return t.base.RoundTrip(clone)
}
