package okta

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/evidence-sync/internal/connectors/httpapi"
)

const (
	// PageSize is the page size requested from list endpoints.
	PageSize = 200

	// logPageSize is the largest page the System Log serves.
	logPageSize = 1000

	// defaultRate stays under the org-wide management API limits.
	defaultRate  = 10
	defaultBurst = 20
)

// API is the read-only Okta surface used by the collectors.
type API interface {
	// CurrentUser returns the user owning the credentials.
	CurrentUser(ctx context.Context) (*User, error)
	// ListUsers lists every user.
	ListUsers(ctx context.Context) ([]User, error)
	// ListFactors lists the factors enrolled by one user.
	ListFactors(ctx context.Context, userID string) ([]Factor, error)
	// ListGroups lists every group with its member count.
	ListGroups(ctx context.Context) ([]Group, error)
	// ListApplications lists every app integration.
	ListApplications(ctx context.Context) ([]Application, error)
	// ListLogEvents lists System Log events in [since, until), stopping
	// after limit events.
	ListLogEvents(ctx context.Context, since, until time.Time, limit int) ([]LogEvent, error)
	// ListPolicies lists the policies of one type.
	ListPolicies(ctx context.Context, policyType string) ([]Policy, error)
	// ListPolicyRules lists the rules of one policy.
	ListPolicyRules(ctx context.Context, policyID string) ([]PolicyRule, error)
}

// Ensure Client implements the interface.
var _ API = (*Client)(nil)

// Client calls the Okta management API through the shared REST client.
type Client struct {
	http *httpapi.Client
}

// NewClient creates an Okta client for cfg.
func NewClient(ctx context.Context, cfg *Config, opts ...httpapi.Option) (*Client, error) {
	var auth httpapi.Option
	if cfg.AuthMethod == AuthAPIToken {
		auth = httpapi.WithHeader("Authorization", "SSWS "+cfg.APIToken)
	} else {
		endpoint := oauth2.Endpoint{
			AuthURL:  "https://" + cfg.Domain + "/oauth2/v1/authorize",
			TokenURL: "https://" + cfg.Domain + "/oauth2/v1/token",
		}
		auth = httpapi.WithTokenSource(cfg.OAuthCredentials.TokenSource(ctx, endpoint))
	}
	base := []httpapi.Option{auth, httpapi.WithRateLimit(defaultRate, defaultBurst)}
	return NewClientWithBaseURL(cfg.BaseURL(), append(base, opts...)...)
}

// NewClientWithBaseURL creates a client against an arbitrary API base URL.
func NewClientWithBaseURL(baseURL string, opts ...httpapi.Option) (*Client, error) {
	c, err := httpapi.New(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

func pageQuery(extra url.Values) url.Values {
	q := url.Values{"limit": {strconv.Itoa(PageSize)}}
	for k, v := range extra {
		q[k] = v
	}
	return q
}

// CurrentUser returns the user owning the credentials.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.http.GetJSON(ctx, "users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers lists every user.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	return httpapi.ListLinked[User](ctx, c.http, "users", pageQuery(nil), 0)
}

// ListFactors lists the factors enrolled by one user.
func (c *Client) ListFactors(ctx context.Context, userID string) ([]Factor, error) {
	var factors []Factor
	if err := c.http.GetJSON(ctx, "users/"+url.PathEscape(userID)+"/factors", nil, &factors); err != nil {
		return nil, err
	}
	return factors, nil
}

// ListGroups lists every group with its member count.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	return httpapi.ListLinked[Group](ctx, c.http, "groups", pageQuery(url.Values{"expand": {"stats"}}), 0)
}

// ListApplications lists every app integration.
func (c *Client) ListApplications(ctx context.Context) ([]Application, error) {
	return httpapi.ListLinked[Application](ctx, c.http, "apps", pageQuery(nil), 0)
}

// ListLogEvents lists System Log events in [since, until).
func (c *Client) ListLogEvents(ctx context.Context, since, until time.Time, limit int) ([]LogEvent, error) {
	size := limit
	if size <= 0 || size > logPageSize {
		size = logPageSize
	}
	q := url.Values{
		"since":     {since.UTC().Format(time.RFC3339)},
		"until":     {until.UTC().Format(time.RFC3339)},
		"sortOrder": {"ASCENDING"},
		"limit":     {strconv.Itoa(size)},
	}
	return httpapi.ListLinked[LogEvent](ctx, c.http, "logs", q, limit)
}

// ListPolicies lists the policies of one type.
func (c *Client) ListPolicies(ctx context.Context, policyType string) ([]Policy, error) {
	var policies []Policy
	if err := c.http.GetJSON(ctx, "policies", url.Values{"type": {policyType}}, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

// ListPolicyRules lists the rules of one policy.
func (c *Client) ListPolicyRules(ctx context.Context, policyID string) ([]PolicyRule, error) {
	var rules []PolicyRule
	if err := c.http.GetJSON(ctx, "policies/"+url.PathEscape(policyID)+"/rules", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
