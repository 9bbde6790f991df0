package cli

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/evidence-sync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/evidence-sync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/evidence-sync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
	"github.com/custodia-labs/evidence-sync/internal/core/services"
)

// newProviders builds the providers the commands operate on.
// Tests replace it with stubs.
var newProviders = func(opts connectors.RunOptions) []driven.Provider {
	return services.DefaultProviders(opts)
}

// app holds the services a command invocation uses.
type app struct {
	registry *services.ProviderRegistry
	sync     *services.SyncService
	evidence *sqlite.EvidenceStore
	close    func() error
}

// storeMode selects where a command keeps evidence and run history.
type storeMode int

const (
	withoutStore storeMode = iota
	withMemoryStore
	withSQLiteStore
)

// openApp wires the services for one command invocation.
func openApp(mode storeMode) (*app, error) {
	registry := services.NewProviderRegistry(newProviders(connectors.RunOptions{
		MaxConcurrency: settings.GetInt(keyConcurrency),
	})...)
	a := &app{registry: registry, close: func() error { return nil }}

	switch mode {
	case withSQLiteStore:
		store, err := sqlite.NewStore(settings.GetString(keyStore))
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		a.evidence = store.EvidenceStore()
		a.sync = services.NewSyncService(registry, a.evidence, store.RunStore())
		a.close = store.Close
	case withMemoryStore:
		a.sync = services.NewSyncService(registry, memory.NewEvidenceStore(), memory.NewRunStore())
	default:
		a.sync = services.NewSyncService(registry, nil, nil)
	}
	return a, nil
}

// loadIntegration reads the config document and resolves the integration
// type from the --type flag or the document's type key.
func loadIntegration(path, flagType string) (string, *file.Document, error) {
	if path == "" {
		return "", nil, fmt.Errorf("--config is required")
	}
	doc, err := file.Load(path)
	if err != nil {
		return "", nil, err
	}
	integrationType := strings.TrimSpace(flagType)
	if integrationType == "" {
		integrationType = doc.Type
	}
	if integrationType == "" {
		return "", nil, fmt.Errorf("integration type not set: pass --type or add a %q key to %s", file.KeyType, path)
	}
	if doc.Type != "" && doc.Type != integrationType {
		return "", nil, fmt.Errorf("--type %q does not match %q declared in %s", integrationType, doc.Type, path)
	}
	return integrationType, doc, nil
}
