package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	admin "google.golang.org/api/admin/directory/v1"
	reports "google.golang.org/api/admin/reports/v1"
	"google.golang.org/api/option"
)

const (
	// myCustomer addresses the customer owning the credentials.
	myCustomer = "my_customer"

	// PageSize is the page size requested from Directory list endpoints.
	PageSize = 500

	// maxActivityPage is the largest page the Reports API serves.
	maxActivityPage = 1000
)

// API is the read-only Admin SDK surface used by the collectors.
type API interface {
	// Customer returns the customer owning the credentials.
	Customer(ctx context.Context) (*admin.Customer, error)
	// ListUsers lists every user of domain.
	ListUsers(ctx context.Context, domain string) ([]*admin.User, error)
	// ListGroups lists every group of domain.
	ListGroups(ctx context.Context, domain string) ([]*admin.Group, error)
	// ListMembers lists the direct members of one group.
	ListMembers(ctx context.Context, groupKey string) ([]*admin.Member, error)
	// ListLoginActivities lists login audit events since a point in time,
	// newest first, stopping after limit events.
	ListLoginActivities(ctx context.Context, since time.Time, limit int) ([]*reports.Activity, error)
}

// Ensure Client implements the interface.
var _ API = (*Client)(nil)

// Client wraps the Directory and Reports services with per-API rate limiting.
type Client struct {
	directory *admin.Service
	reports   *reports.Service

	directoryLimiter *RateLimiter
	reportsLimiter   *RateLimiter
}

// NewClient creates an Admin SDK client for cfg.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	ts, err := cfg.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return newClient(ctx, option.WithTokenSource(ts))
}

// NewClientWithHTTPClient creates a client that sends every request through
// httpClient. A non-empty endpoint replaces the Google API base URL.
func NewClientWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	return newClient(ctx, serviceOptions(httpClient, endpoint)...)
}

func newClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	dir, err := NewDirectoryService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create directory service: %w", err)
	}
	rep, err := NewReportsService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create reports service: %w", err)
	}
	return &Client{
		directory:        dir,
		reports:          rep,
		directoryLimiter: NewRateLimiter(APIDirectory),
		reportsLimiter:   NewRateLimiter(APIReports),
	}, nil
}

// call waits for the limiter, runs fn and records a backoff on 429.
func call(ctx context.Context, limiter *RateLimiter, op string, fn func() error) error {
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if err := fn(); err != nil {
		if IsRateLimited(err) {
			limiter.RecordRateLimitError(DefaultBackoff)
		}
		return fmt.Errorf("%s: %w", op, WrapError(err))
	}
	return nil
}

// Customer returns the customer owning the credentials.
func (c *Client) Customer(ctx context.Context) (*admin.Customer, error) {
	var out *admin.Customer
	err := call(ctx, c.directoryLimiter, "get customer", func() error {
		var err error
		out, err = c.directory.Customers.Get(myCustomer).Context(ctx).Do()
		return err
	})
	return out, err
}

// ListUsers lists every user of domain.
func (c *Client) ListUsers(ctx context.Context, domain string) ([]*admin.User, error) {
	var out []*admin.User
	req := c.directory.Users.List().Domain(domain).MaxResults(PageSize).OrderBy("email")
	for {
		var page *admin.Users
		err := call(ctx, c.directoryLimiter, "list users", func() error {
			var err error
			page, err = req.Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, page.Users...)
		if page.NextPageToken == "" {
			return out, nil
		}
		req.PageToken(page.NextPageToken)
	}
}

// ListGroups lists every group of domain.
func (c *Client) ListGroups(ctx context.Context, domain string) ([]*admin.Group, error) {
	var out []*admin.Group
	req := c.directory.Groups.List().Domain(domain).MaxResults(200)
	for {
		var page *admin.Groups
		err := call(ctx, c.directoryLimiter, "list groups", func() error {
			var err error
			page, err = req.Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, page.Groups...)
		if page.NextPageToken == "" {
			return out, nil
		}
		req.PageToken(page.NextPageToken)
	}
}

// ListMembers lists the direct members of one group.
func (c *Client) ListMembers(ctx context.Context, groupKey string) ([]*admin.Member, error) {
	var out []*admin.Member
	req := c.directory.Members.List(groupKey).MaxResults(200)
	for {
		var page *admin.Members
		err := call(ctx, c.directoryLimiter, "list members of "+groupKey, func() error {
			var err error
			page, err = req.Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, page.Members...)
		if page.NextPageToken == "" {
			return out, nil
		}
		req.PageToken(page.NextPageToken)
	}
}

// ListLoginActivities lists login audit events since a point in time.
func (c *Client) ListLoginActivities(ctx context.Context, since time.Time, limit int) ([]*reports.Activity, error) {
	pageSize := limit
	if pageSize <= 0 || pageSize > maxActivityPage {
		pageSize = maxActivityPage
	}

	var out []*reports.Activity
	req := c.reports.Activities.List("all", "login").
		StartTime(since.UTC().Format(time.RFC3339)).
		MaxResults(int64(pageSize))
	for {
		var page *reports.Activities
		err := call(ctx, c.reportsLimiter, "list login activities", func() error {
			var err error
			page, err = req.Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, a := range page.Items {
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
			out = append(out, a)
		}
		if page.NextPageToken == "" || (limit > 0 && len(out) >= limit) {
			return out, nil
		}
		req.PageToken(page.NextPageToken)
	}
}
