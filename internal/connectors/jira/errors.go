package jira

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ctreminiom/go-atlassian/v2/pkg/infra/models"

	"github.com/custodia-labs/evidence-sync/internal/connectors/httpapi"
)

// maxErrorBody bounds how much of an error body is kept.
const maxErrorBody = 512

// statusOf returns the HTTP status of a response scheme, or 0.
func statusOf(rs *models.ResponseScheme) int {
	if rs == nil {
		return 0
	}
	if rs.Code != 0 {
		return rs.Code
	}
	if rs.Response != nil {
		return rs.StatusCode
	}
	return 0
}

// wrapError classifies a go-atlassian failure. When the response carries a
// non-2xx status the error is an *httpapi.APIError; transport failures are
// wrapped as they are.
func wrapError(op string, rs *models.ResponseScheme, err error) error {
	status := statusOf(rs)
	if status == 0 || (status >= 200 && status < 300) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", op, &httpapi.RateLimitError{})
	}

	msg := strings.TrimSpace(rs.Bytes.String())
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return fmt.Errorf("%s: %w", op, &httpapi.APIError{StatusCode: status, Message: msg, URL: rs.Endpoint})
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool { return httpapi.IsNotFound(err) }

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool { return httpapi.IsUnauthorized(err) }

// IsForbidden checks if the error indicates a forbidden resource.
func IsForbidden(err error) bool { return httpapi.IsForbidden(err) }

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool { return httpapi.IsRateLimited(err) }
