// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and connector and storage
// adapters implement them.
//
// # Required Interfaces
//
//   - Provider: validates configuration, tests connectivity and syncs one external system
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EvidenceSink: receives collected evidence after a sync. Without it, evidence is only returned.
//   - SyncRunStore: persists sync run history. Without it, runs are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
