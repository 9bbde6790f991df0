package driven

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Provider is the connector for one external system.
//
// Providers are stateless. Every call receives the raw configuration
// document, builds its own authenticated client, and discards it when
// the call returns.
type Provider interface {
	// IntegrationType returns the stable identifier (e.g. "aws", "okta").
	IntegrationType() string

	// Capabilities returns the static set of evidence classes the provider can produce.
	Capabilities() domain.CapabilitySet

	// RequiredFields lists configuration keys that must always be present.
	RequiredFields() []string

	// OptionalFields lists the remaining documented configuration keys.
	OptionalFields() []string

	// Describe returns the full configuration surface of the provider.
	Describe() domain.IntegrationType

	// ValidateConfig parses raw into the typed configuration and checks it.
	// It never performs I/O. Failures are *domain.ConfigError.
	ValidateConfig(raw map[string]any) error

	// TestConnection validates raw, builds a client and performs one
	// identity-confirming call.
	TestConnection(ctx context.Context, raw map[string]any) (*domain.ConnectionDetails, error)

	// Sync validates raw, builds a client and runs every enabled unit of work.
	// An error means the sync could not start or was cancelled; failures of
	// individual units are reported in SyncResult.Errors.
	Sync(ctx context.Context, raw map[string]any, sc domain.SyncContext) (*domain.SyncResult, error)
}
