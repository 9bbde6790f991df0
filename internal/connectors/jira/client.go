package jira

import (
	"context"
	"fmt"
	"net/http"

	jira "github.com/ctreminiom/go-atlassian/v2/jira/v3"
	"github.com/ctreminiom/go-atlassian/v2/pkg/infra/models"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/evidence-sync/internal/connectors/httpapi"
)

const (
	// PageSize is the page size requested from paginated endpoints.
	PageSize = 50

	// userAgent identifies the sync client to Atlassian.
	userAgent = "evidence-sync"
)

// atlassianEndpoint is the Atlassian OAuth 2.0 (3LO) endpoint.
var atlassianEndpoint = oauth2.Endpoint{
	AuthURL:  "https://auth.atlassian.com/authorize",
	TokenURL: "https://auth.atlassian.com/oauth/token",
}

// issueFields are the fields requested from issue search.
var issueFields = []string{"summary", "status", "priority", "labels", "assignee", "issuetype"}

// API is the read-only Jira surface used by the collectors.
type API interface {
	// Myself returns the user owning the credentials.
	Myself(ctx context.Context) (*models.UserScheme, error)
	// ListProjects lists every project visible to the credentials.
	ListProjects(ctx context.Context) ([]*models.ProjectScheme, error)
	// SearchIssues runs a JQL query, stopping after limit issues.
	SearchIssues(ctx context.Context, jql string, limit int) ([]*models.IssueScheme, error)
	// AssignableUsers lists the users assignable to issues of one project.
	AssignableUsers(ctx context.Context, projectKey string) ([]*models.UserScheme, error)
	// PermissionScheme returns the permission scheme of one project with
	// its grants.
	PermissionScheme(ctx context.Context, projectKey string) (*models.PermissionSchemeScheme, error)
}

// Ensure Client implements the interface.
var _ API = (*Client)(nil)

// Client wraps the go-atlassian Jira Cloud v3 client.
type Client struct {
	jira *jira.Client
}

// NewClient creates a Jira client for cfg. Requests go through a retrying
// transport that honours Retry-After.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	var opts []httpapi.Option
	if cfg.AuthMethod == AuthOAuth {
		opts = append(opts, httpapi.WithTokenSource(cfg.OAuthCredentials.TokenSource(ctx, atlassianEndpoint)))
	}
	return NewClientWithHTTPClient(httpapi.NewHTTPClient(opts...), cfg)
}

// NewClientWithHTTPClient creates a Jira client with a custom http.Client.
func NewClientWithHTTPClient(httpClient *http.Client, cfg *Config) (*Client, error) {
	client, err := jira.New(httpClient, cfg.InstanceURL)
	if err != nil {
		return nil, fmt.Errorf("create jira client: %w", err)
	}
	if cfg.AuthMethod == AuthAPIToken {
		client.Auth.SetBasicAuth(cfg.Email, cfg.APIToken)
	}
	client.Auth.SetUserAgent(userAgent)
	return &Client{jira: client}, nil
}

// Myself returns the user owning the credentials.
func (c *Client) Myself(ctx context.Context) (*models.UserScheme, error) {
	user, rs, err := c.jira.MySelf.Details(ctx, nil)
	if err != nil {
		return nil, wrapError("get current user", rs, err)
	}
	return user, nil
}

// ListProjects lists every project visible to the credentials, ordered by key.
func (c *Client) ListProjects(ctx context.Context) ([]*models.ProjectScheme, error) {
	opts := &models.ProjectSearchOptionsScheme{OrderBy: "key"}

	var all []*models.ProjectScheme
	startAt := 0
	for {
		page, rs, err := c.jira.Project.Search(ctx, opts, startAt, PageSize)
		if err != nil {
			return nil, wrapError("list projects", rs, err)
		}
		if len(page.Values) == 0 {
			return all, nil
		}
		all = append(all, page.Values...)
		if page.IsLast {
			return all, nil
		}
		// Advance by the observed page size; servers may return short pages.
		startAt += len(page.Values)
	}
}

// SearchIssues runs a JQL query, stopping after limit issues.
func (c *Client) SearchIssues(ctx context.Context, jql string, limit int) ([]*models.IssueScheme, error) {
	var all []*models.IssueScheme
	startAt := 0
	for {
		page, rs, err := c.jira.Issue.Search.Post(ctx, jql, issueFields, nil, startAt, PageSize, "")
		if err != nil {
			return nil, wrapError("search issues", rs, err)
		}
		for _, issue := range page.Issues {
			if limit > 0 && len(all) >= limit {
				return all, nil
			}
			all = append(all, issue)
		}
		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total || (limit > 0 && len(all) >= limit) {
			return all, nil
		}
	}
}

// AssignableUsers lists the users assignable to issues of one project.
func (c *Client) AssignableUsers(ctx context.Context, projectKey string) ([]*models.UserScheme, error) {
	var all []*models.UserScheme
	startAt := 0
	for {
		page, rs, err := c.jira.User.Search.Projects(ctx, "", []string{projectKey}, startAt, PageSize)
		if err != nil {
			return nil, wrapError("list assignable users of "+projectKey, rs, err)
		}
		all = append(all, page...)
		if len(page) < PageSize {
			return all, nil
		}
		startAt += len(page)
	}
}

// PermissionScheme returns the permission scheme of one project with its grants.
func (c *Client) PermissionScheme(ctx context.Context, projectKey string) (*models.PermissionSchemeScheme, error) {
	scheme, rs, err := c.jira.Project.Permission.Get(ctx, projectKey, []string{"permissions"})
	if err != nil {
		return nil, wrapError("get permission scheme of "+projectKey, rs, err)
	}
	return scheme, nil
}
