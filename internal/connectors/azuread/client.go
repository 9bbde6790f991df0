package azuread

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/evidence-sync/internal/connectors/httpapi"
)

const (
	// GraphBaseURL is the Microsoft Graph v1.0 root.
	GraphBaseURL = "https://graph.microsoft.com/v1.0"

	// graphScope requests every application permission granted to the app.
	graphScope = "https://graph.microsoft.com/.default"

	// loginBaseURL is the Microsoft identity platform authority.
	loginBaseURL = "https://login.microsoftonline.com/"

	// PageSize is the page size requested from directory collections.
	PageSize = 999

	// signInPageSize is the largest page the sign-in log serves.
	signInPageSize = 1000

	defaultRate  = 10
	defaultBurst = 20
)

// API is the read-only Graph surface used by the collectors.
type API interface {
	// Organization returns the tenant profile.
	Organization(ctx context.Context) (*Organization, error)
	// ListUsers lists every user.
	ListUsers(ctx context.Context) ([]User, error)
	// ListMFARegistrations lists the MFA registration state of every user.
	ListMFARegistrations(ctx context.Context) ([]MFARegistration, error)
	// ListGroups lists every group.
	ListGroups(ctx context.Context) ([]Group, error)
	// ListDirectoryRoles lists the activated directory roles.
	ListDirectoryRoles(ctx context.Context) ([]DirectoryRole, error)
	// ListRoleMembers lists the members of one directory role.
	ListRoleMembers(ctx context.Context, roleID string) ([]DirectoryObject, error)
	// ListSignIns lists sign-ins since a point in time, newest first,
	// stopping after limit events.
	ListSignIns(ctx context.Context, since time.Time, limit int) ([]SignIn, error)
	// ListConditionalAccessPolicies lists every Conditional Access policy.
	ListConditionalAccessPolicies(ctx context.Context) ([]ConditionalAccessPolicy, error)
}

// Ensure Client implements the interface.
var _ API = (*Client)(nil)

// Client calls Microsoft Graph through the shared REST client.
type Client struct {
	http *httpapi.Client
}

// tokenEndpoint returns the v2.0 endpoints of the tenant authority.
func tokenEndpoint(tenant string) oauth2.Endpoint {
	base := loginBaseURL + url.PathEscape(tenant) + "/oauth2/v2.0/"
	return oauth2.Endpoint{AuthURL: base + "authorize", TokenURL: base + "token"}
}

// TokenSource returns the Graph token source for the configured auth method.
func (c *Config) TokenSource(ctx context.Context) oauth2.TokenSource {
	endpoint := tokenEndpoint(c.TenantID)
	if c.AuthMethod == AuthClientSecret {
		cc := &clientcredentials.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			TokenURL:     endpoint.TokenURL,
			Scopes:       []string{graphScope},
		}
		return cc.TokenSource(ctx)
	}
	return c.OAuthCredentials.TokenSource(ctx, endpoint, graphScope, "offline_access")
}

// NewClient creates a Graph client for cfg.
func NewClient(ctx context.Context, cfg *Config, opts ...httpapi.Option) (*Client, error) {
	base := []httpapi.Option{
		httpapi.WithTokenSource(cfg.TokenSource(ctx)),
		httpapi.WithRateLimit(defaultRate, defaultBurst),
	}
	return NewClientWithBaseURL(GraphBaseURL, append(base, opts...)...)
}

// NewClientWithBaseURL creates a client against an arbitrary Graph root.
func NewClientWithBaseURL(baseURL string, opts ...httpapi.Option) (*Client, error) {
	c, err := httpapi.New(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

func selectQuery(fields string) url.Values {
	return url.Values{
		"$select": {fields},
		"$top":    {strconv.Itoa(PageSize)},
	}
}

// Organization returns the tenant profile.
func (c *Client) Organization(ctx context.Context) (*Organization, error) {
	var page httpapi.ODataPage[Organization]
	if err := c.http.GetJSON(ctx, "organization", nil, &page); err != nil {
		return nil, err
	}
	if len(page.Value) == 0 {
		return nil, errors.New("organization: empty response")
	}
	return &page.Value[0], nil
}

// ListUsers lists every user.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	q := selectQuery("id,displayName,userPrincipalName,mail,userType,accountEnabled,createdDateTime")
	return httpapi.ListOData[User](ctx, c.http, "users", q, 0)
}

// ListMFARegistrations lists the MFA registration state of every user.
func (c *Client) ListMFARegistrations(ctx context.Context) ([]MFARegistration, error) {
	q := url.Values{"$top": {strconv.Itoa(PageSize)}}
	return httpapi.ListOData[MFARegistration](ctx, c.http, "reports/authenticationMethods/userRegistrationDetails", q, 0)
}

// ListGroups lists every group.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	q := selectQuery("id,displayName,securityEnabled,mailEnabled,groupTypes,visibility")
	return httpapi.ListOData[Group](ctx, c.http, "groups", q, 0)
}

// ListDirectoryRoles lists the activated directory roles.
func (c *Client) ListDirectoryRoles(ctx context.Context) ([]DirectoryRole, error) {
	return httpapi.ListOData[DirectoryRole](ctx, c.http, "directoryRoles", nil, 0)
}

// ListRoleMembers lists the members of one directory role.
func (c *Client) ListRoleMembers(ctx context.Context, roleID string) ([]DirectoryObject, error) {
	return httpapi.ListOData[DirectoryObject](ctx, c.http, "directoryRoles/"+url.PathEscape(roleID)+"/members", nil, 0)
}

// ListSignIns lists sign-ins since a point in time.
func (c *Client) ListSignIns(ctx context.Context, since time.Time, limit int) ([]SignIn, error) {
	size := limit
	if size <= 0 || size > signInPageSize {
		size = signInPageSize
	}
	q := url.Values{
		"$filter": {"createdDateTime ge " + since.UTC().Format(time.RFC3339)},
		"$top":    {strconv.Itoa(size)},
	}
	return httpapi.ListOData[SignIn](ctx, c.http, "auditLogs/signIns", q, limit)
}

// ListConditionalAccessPolicies lists every Conditional Access policy.
func (c *Client) ListConditionalAccessPolicies(ctx context.Context) ([]ConditionalAccessPolicy, error) {
	return httpapi.ListOData[ConditionalAccessPolicy](ctx, c.http, "identity/conditionalAccess/policies", nil, 0)
}
