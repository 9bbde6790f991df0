// Package google implements the evidence provider for Google Workspace.
//
// The provider reads one Workspace domain through the Admin SDK Directory
// and Reports APIs.
//
// # Authentication
//
//   - service_account: the JSON key of a service account granted
//     domain-wide delegation for the read-only Admin SDK scopes. Calls are
//     made on behalf of admin_email, which must belong to the domain.
//   - oauth: an access token issued to a Workspace administrator, or a
//     refresh token together with the OAuth client_id and client_secret.
//
// # Rate Limiting
//
// Each API has its own token bucket (Directory 5 req/s, Reports 2 req/s).
// A 429 response opens a backoff window during which every request to that
// API waits.
//
// # Execution Plan
//
// users, groups and login_audit run once each, bound to the domain. The
// login window is login_lookback_days on full syncs and one day on
// incremental syncs. At most max_events activities are read.
//
// # Failure Policy
//
//	service      unit fails when           item degrades when
//	users        user listing fails        -
//	groups       group listing fails       member listing fails -> external_members "unknown"
//	login_audit  activity listing fails    -
package google
