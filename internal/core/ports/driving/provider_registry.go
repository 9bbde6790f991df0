package driving

import "github.com/custodia-labs/evidence-sync/internal/core/domain"

// ProviderRegistry provides information about the supported integration types.
type ProviderRegistry interface {
	// Types returns all registered integration types, sorted.
	Types() []string

	// Describe returns the configuration surface of an integration type.
	Describe(integrationType string) (domain.IntegrationType, error)

	// Capabilities returns the static capability set of an integration type.
	Capabilities(integrationType string) (domain.CapabilitySet, error)

	// Supports reports whether the integration type is registered.
	Supports(integrationType string) bool
}
