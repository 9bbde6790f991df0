// Package okta implements the evidence provider for Okta.
//
// The provider reads one Okta org through the management API at
// https://<domain>/api/v1, paginating with Link headers.
//
// # Authentication
//
//   - api_token: an SSWS token, sent as "Authorization: SSWS <token>".
//     The token carries the roles of the admin who created it; a read-only
//     admin is sufficient.
//   - oauth: an access token for an API services app granted the
//     okta.*.read scopes, or a refresh token with client_id and
//     client_secret, refreshed against the org authorization server.
//
// # Execution Plan
//
// Each service runs once, bound to the org domain. The System Log window is
// log_lookback_days on full syncs and one day on incremental syncs, and at
// most max_log_events events are read.
//
// # Failure Policy
//
//	service       unit fails when             item degrades when
//	users         user listing fails          factor listing fails -> mfa "unknown"
//	groups        group listing fails         -
//	applications  app listing fails           -
//	system_log    log listing fails           -
//	policies      policy listing fails        rule listing fails -> mfa "unknown"
package okta
