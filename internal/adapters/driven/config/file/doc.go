// Package file loads integration config documents from the local filesystem.
//
// A document is a TOML or JSON file holding one provider config, the same
// untyped map a job payload carries. An optional top-level "type" key names
// the integration type. String values may reference environment variables
// as ${NAME} so secrets can stay out of the file.
package file
