package okta

import "github.com/custodia-labs/evidence-sync/internal/connectors/httpapi"

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool { return httpapi.IsNotFound(err) }

// IsUnauthorized checks if the error indicates an authentication failure.
// Okta answers a revoked SSWS token with 401 E0000011.
func IsUnauthorized(err error) bool { return httpapi.IsUnauthorized(err) }

// IsForbidden checks if the error indicates the token lacks an admin role.
func IsForbidden(err error) bool { return httpapi.IsForbidden(err) }

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool { return httpapi.IsRateLimited(err) }
