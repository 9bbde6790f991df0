// Package cli is the command-line driving adapter.
//
// Commands are cobra commands registered on a package-level root in init.
// Process settings (verbosity, log format, store path, concurrency) are read
// through viper from flags, EVIDENCE_SYNC_* environment variables and an
// optional ~/.evidence-sync/config.toml, in that order of precedence.
//
// Integration configs are read from TOML or JSON documents given with
// --config; see the config/file adapter.
package cli
