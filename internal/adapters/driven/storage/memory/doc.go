// Package memory provides in-memory implementations of the storage ports,
// used by tests and dry-run syncs. Nothing survives the process.
package memory
