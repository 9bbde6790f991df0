package github

import (
	"errors"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/evidence-sync/internal/connectors/httpapi"
)

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return httpapi.IsNotFound(err)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return httpapi.IsUnauthorized(err)
}

// IsForbidden checks if the error indicates a forbidden resource.
func IsForbidden(err error) bool {
	return httpapi.IsForbidden(err)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return httpapi.IsRateLimited(err)
}

// wrapError converts go-github errors to the shared error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &httpapi.RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &httpapi.RateLimitError{ResetAt: c.rateLimiter.ResetTime()}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &httpapi.APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return fmt.Errorf("%s: %w", operation, apiErr)
	}

	return fmt.Errorf("%s: %w", operation, err)
}
