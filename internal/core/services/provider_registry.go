package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/connectors/aws"
	"github.com/custodia-labs/evidence-sync/internal/connectors/azuread"
	"github.com/custodia-labs/evidence-sync/internal/connectors/github"
	"github.com/custodia-labs/evidence-sync/internal/connectors/google"
	"github.com/custodia-labs/evidence-sync/internal/connectors/jira"
	"github.com/custodia-labs/evidence-sync/internal/connectors/okta"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driving"
)

// Ensure ProviderRegistry implements the interface.
var _ driving.ProviderRegistry = (*ProviderRegistry)(nil)

// ProviderRegistry maps integration types to providers.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]driven.Provider
}

// NewProviderRegistry creates a registry holding providers.
// A later provider replaces an earlier one of the same type.
func NewProviderRegistry(providers ...driven.Provider) *ProviderRegistry {
	r := &ProviderRegistry{providers: make(map[string]driven.Provider, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// DefaultProviders returns one provider of every built-in integration type,
// each running its units with opts.
func DefaultProviders(opts connectors.RunOptions) []driven.Provider {
	return []driven.Provider{
		aws.New(aws.WithRunOptions(opts)),
		azuread.New(azuread.WithRunOptions(opts)),
		github.New(github.WithRunOptions(opts)),
		google.New(google.WithRunOptions(opts)),
		jira.New(jira.WithRunOptions(opts)),
		okta.New(okta.WithRunOptions(opts)),
	}
}

// NewDefaultProviderRegistry creates a registry of the built-in providers
// running units sequentially.
func NewDefaultProviderRegistry() *ProviderRegistry {
	return NewProviderRegistry(DefaultProviders(connectors.RunOptions{})...)
}

// Register adds p under its integration type.
func (r *ProviderRegistry) Register(p driven.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.IntegrationType()] = p
}

// Get returns the provider of integrationType.
func (r *ProviderRegistry) Get(integrationType string) (driven.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[integrationType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, integrationType)
	}
	return p, nil
}

// Types returns all registered integration types, sorted.
func (r *ProviderRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.providers))
	for t := range r.providers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Describe returns the configuration surface of an integration type.
func (r *ProviderRegistry) Describe(integrationType string) (domain.IntegrationType, error) {
	p, err := r.Get(integrationType)
	if err != nil {
		return domain.IntegrationType{}, err
	}
	return p.Describe(), nil
}

// Capabilities returns the static capability set of an integration type.
func (r *ProviderRegistry) Capabilities(integrationType string) (domain.CapabilitySet, error) {
	p, err := r.Get(integrationType)
	if err != nil {
		return 0, err
	}
	return p.Capabilities(), nil
}

// Supports reports whether the integration type is registered.
func (r *ProviderRegistry) Supports(integrationType string) bool {
	_, err := r.Get(integrationType)
	return err == nil
}
