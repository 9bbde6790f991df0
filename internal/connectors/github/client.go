package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/custodia-labs/evidence-sync/internal/connectors/httpapi"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// ProactiveRate is the proactive throttle rate (~1.2 req/sec = 4320/hr).
	ProactiveRate = 1.2

	// PerPage is the page size requested from list endpoints.
	PerPage = 100
)

// API is the read-only GitHub surface used by the collectors.
type API interface {
	// AuthenticatedUser returns the user owning the credentials.
	AuthenticatedUser(ctx context.Context) (*gh.User, error)
	// Organization returns one organisation.
	Organization(ctx context.Context, org string) (*gh.Organization, error)
	// ListRepositories lists the repositories of org, or of the
	// authenticated user when org is empty.
	ListRepositories(ctx context.Context, org string) ([]*gh.Repository, error)
	// BranchProtection returns the protection of one branch. An unprotected
	// branch yields gh.ErrBranchNotProtected.
	BranchProtection(ctx context.Context, owner, repo, branch string) (*gh.Protection, error)
	// ListMembers lists organisation members, optionally filtered
	// (e.g. "2fa_disabled").
	ListMembers(ctx context.Context, org, filter string) ([]*gh.User, error)
	// Membership returns the organisation membership of one user.
	Membership(ctx context.Context, org, user string) (*gh.Membership, error)
	// ListDependabotAlerts lists open Dependabot alerts of a repository.
	ListDependabotAlerts(ctx context.Context, owner, repo string) ([]*gh.DependabotAlert, error)
	// ListSecretScanningAlerts lists open secret scanning alerts of a repository.
	ListSecretScanningAlerts(ctx context.Context, owner, repo string) ([]*gh.SecretScanningAlert, error)
}

// Ensure Client implements the interface.
var _ API = (*Client)(nil)

// Client wraps the go-github client with rate limiting.
type Client struct {
	gh          *gh.Client
	rateLimiter *httpapi.RateLimiter
}

// NewClient creates a GitHub API client for cfg.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	tc := oauth2.NewClient(ctx, cfg.tokenSource(ctx))
	tc.Timeout = DefaultTimeout
	return NewClientWithHTTPClient(tc, cfg.BaseURL)
}

// NewClientWithHTTPClient creates a GitHub client with a custom http.Client.
// A non-empty baseURL selects a GitHub Enterprise Server API.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("set enterprise URL: %w", err)
		}
	}
	return &Client{
		gh:          client,
		rateLimiter: httpapi.NewRateLimiter(ProactiveRate, 1),
	}, nil
}

func (c *Config) tokenSource(ctx context.Context) oauth2.TokenSource {
	if c.AuthMethod == AuthToken {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token})
	}
	return c.OAuthCredentials.TokenSource(ctx, githuboauth.Endpoint)
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *httpapi.RateLimiter {
	return c.rateLimiter
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// AuthenticatedUser returns the user owning the token.
func (c *Client) AuthenticatedUser(ctx context.Context) (*gh.User, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	user, resp, err := c.gh.Users.Get(ctx, "")
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "get authenticated user")
	}
	return user, nil
}

// Organization fetches one organisation.
func (c *Client) Organization(ctx context.Context, org string) (*gh.Organization, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	o, resp, err := c.gh.Organizations.Get(ctx, org)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "get organization")
	}
	return o, nil
}

// ListRepositories returns every repository of org, or every repository the
// authenticated user can access when org is empty.
func (c *Client) ListRepositories(ctx context.Context, org string) ([]*gh.Repository, error) {
	var all []*gh.Repository
	page := 1
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		var (
			repos []*gh.Repository
			resp  *gh.Response
			err   error
		)
		list := gh.ListOptions{PerPage: PerPage, Page: page}
		if org != "" {
			repos, resp, err = c.gh.Repositories.ListByOrg(ctx, org, &gh.RepositoryListByOrgOptions{
				Type:        "all",
				ListOptions: list,
			})
		} else {
			repos, resp, err = c.gh.Repositories.ListByAuthenticatedUser(ctx, &gh.RepositoryListByAuthenticatedUserOptions{
				Visibility:  "all",
				Affiliation: "owner,collaborator,organization_member",
				ListOptions: list,
			})
		}
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			return nil, c.wrapError(err, "list repos")
		}

		all = append(all, repos...)
		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		page = resp.NextPage
	}
}

// BranchProtection fetches the protection rules of one branch.
func (c *Client) BranchProtection(ctx context.Context, owner, repo, branch string) (*gh.Protection, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	protection, resp, err := c.gh.Repositories.GetBranchProtection(ctx, owner, repo, branch)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		if errors.Is(err, gh.ErrBranchNotProtected) {
			return nil, err
		}
		return nil, c.wrapError(err, "get branch protection")
	}
	return protection, nil
}

// ListMembers lists the members of an organisation.
func (c *Client) ListMembers(ctx context.Context, org, filter string) ([]*gh.User, error) {
	opts := &gh.ListMembersOptions{
		Filter:      filter,
		ListOptions: gh.ListOptions{PerPage: PerPage},
	}
	var all []*gh.User
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		members, resp, err := c.gh.Organizations.ListMembers(ctx, org, opts)
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			return nil, c.wrapError(err, "list members")
		}
		all = append(all, members...)
		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// Membership fetches the organisation membership of user.
func (c *Client) Membership(ctx context.Context, org, user string) (*gh.Membership, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	m, resp, err := c.gh.Organizations.GetOrgMembership(ctx, user, org)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "get membership")
	}
	return m, nil
}

// ListDependabotAlerts lists the open Dependabot alerts of a repository.
func (c *Client) ListDependabotAlerts(ctx context.Context, owner, repo string) ([]*gh.DependabotAlert, error) {
	opts := &gh.ListAlertsOptions{
		State:       gh.Ptr("open"),
		ListOptions: gh.ListOptions{PerPage: PerPage},
	}
	var all []*gh.DependabotAlert
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		alerts, resp, err := c.gh.Dependabot.ListRepoAlerts(ctx, owner, repo, opts)
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			return nil, c.wrapError(err, "list dependabot alerts")
		}
		all = append(all, alerts...)
		if resp == nil {
			return all, nil
		}
		switch {
		case resp.After != "":
			opts.ListCursorOptions.After = resp.After
		case resp.NextPage != 0:
			opts.ListOptions.Page = resp.NextPage
		default:
			return all, nil
		}
	}
}

// ListSecretScanningAlerts lists the open secret scanning alerts of a repository.
func (c *Client) ListSecretScanningAlerts(ctx context.Context, owner, repo string) ([]*gh.SecretScanningAlert, error) {
	opts := &gh.SecretScanningAlertListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: PerPage},
	}
	var all []*gh.SecretScanningAlert
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		alerts, resp, err := c.gh.SecretScanning.ListAlertsForRepo(ctx, owner, repo, opts)
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			return nil, c.wrapError(err, "list secret scanning alerts")
		}
		all = append(all, alerts...)
		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		opts.ListOptions.Page = resp.NextPage
	}
}
