// Package connectors holds the toolkit shared by every provider package:
// raw configuration decoding and validation helpers, scope filtering,
// evidence construction, and the unit-of-work runner that isolates
// failures and merges partial results.
//
// Each provider lives in its own sub-package (aws, azuread, github, google,
// jira, okta) and implements driven.Provider on top of this toolkit.
package connectors
