package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	admin "google.golang.org/api/admin/directory/v1"
	reports "google.golang.org/api/admin/reports/v1"
)

// Scopes are the read-only Admin SDK scopes requested by every credential.
var Scopes = []string{
	admin.AdminDirectoryCustomerReadonlyScope,
	admin.AdminDirectoryUserReadonlyScope,
	admin.AdminDirectoryGroupReadonlyScope,
	admin.AdminDirectoryGroupMemberReadonlyScope,
	reports.AdminReportsAuditReadonlyScope,
}

// TokenSource returns the token source for the configured auth method.
//
// A service account impersonates AdminEmail through domain-wide delegation;
// the Admin SDK rejects service account calls made without a subject.
func (c *Config) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if c.AuthMethod == AuthOAuth {
		return c.OAuthCredentials.TokenSource(ctx, googleoauth.Endpoint, Scopes...), nil
	}

	jwt, err := googleoauth.JWTConfigFromJSON([]byte(c.ServiceAccountJSON), Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	jwt.Subject = c.AdminEmail
	return jwt.TokenSource(ctx), nil
}
