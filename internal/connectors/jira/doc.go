// Package jira implements the evidence provider for Jira Cloud.
//
// # Authentication
//
//   - api_token: an Atlassian account email with an API token, sent as
//     basic auth.
//   - oauth: an OAuth 2.0 (3LO) access token, or a refresh token with the
//     app's client_id and client_secret. With OAuth the instance_url is the
//     API gateway form https://api.atlassian.com/ex/jira/<cloud id>.
//
// Requests are retried on 429 and 5xx responses, honouring Retry-After.
//
// # Execution Plan
//
// The project listing is fetched once per sync, narrowed by the projects
// allow-list, and shared by every service. When the listing fails each
// enabled service records its own SyncError with the site as resource.
//
// issues runs a single JQL search over the projects in scope for issues
// carrying any of security_labels created within issue_lookback_days, up to
// max_issues.
//
// # Failure Policy
//
//	service      unit fails when          item degrades when
//	projects     project listing fails    -
//	issues       project listing fails,   -
//	             issue search fails
//	users        project listing fails    user lookup fails -> project listed in projects_unknown
//	permissions  project listing fails    scheme lookup fails -> status "unknown"
package jira
