// Package domain defines the core entities of the evidence sync engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Capability / CapabilitySet: the static evidence classes a provider can produce
//   - SyncContext: the invocation-scoped parameters of one sync
//   - CollectedEvidence: a control-tagged artefact produced by a collector
//   - SyncError: a recorded failure of one unit of work
//   - SyncResult: the mergeable outcome of a sync
//   - ConnectionDetails: the identity confirmed by a connection test
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
