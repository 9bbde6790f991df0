package azuread

import "github.com/custodia-labs/evidence-sync/internal/connectors/httpapi"

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool { return httpapi.IsNotFound(err) }

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool { return httpapi.IsUnauthorized(err) }

// IsForbidden checks if the error indicates a missing Graph permission or
// licence. Sign-in logs and MFA registration details need Entra ID P1.
func IsForbidden(err error) bool { return httpapi.IsForbidden(err) }

// IsRateLimited checks if the error indicates Graph throttling.
func IsRateLimited(err error) bool { return httpapi.IsRateLimited(err) }
