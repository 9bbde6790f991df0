package google

import (
	"context"
	"net/http"

	admin "google.golang.org/api/admin/directory/v1"
	reports "google.golang.org/api/admin/reports/v1"
	"google.golang.org/api/option"
)

// NewDirectoryService creates an Admin SDK Directory service.
func NewDirectoryService(ctx context.Context, opts ...option.ClientOption) (*admin.Service, error) {
	return admin.NewService(ctx, opts...)
}

// NewReportsService creates an Admin SDK Reports service.
func NewReportsService(ctx context.Context, opts ...option.ClientOption) (*reports.Service, error) {
	return reports.NewService(ctx, opts...)
}

// serviceOptions returns the client options for a custom HTTP client and
// endpoint, used against test servers.
func serviceOptions(httpClient *http.Client, endpoint string) []option.ClientOption {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts
}
