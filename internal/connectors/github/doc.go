// Package github implements the evidence provider for GitHub.
//
// The provider inspects the repositories and members of one organisation,
// or the repositories of the authenticated user when no organisation is
// configured. GitHub Enterprise Server is reached through base_url.
//
// # Authentication
//
//   - token: a personal access token (classic or fine-grained). Classic
//     tokens need the repo, read:org and security_events scopes for every
//     service to report.
//   - oauth: an OAuth App access token, or a refresh token together with
//     the app's client_id and client_secret.
//
// # Rate Limiting
//
// The client implements a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket limits requests to about 1.2 per
//     second, staying under the 5,000/hour limit.
//
//  2. Reactive handling: X-RateLimit-Remaining and X-RateLimit-Reset are
//     tracked from every response. When the quota is nearly exhausted the
//     client waits for the reset before continuing.
//
// # Execution Plan
//
// The repository listing is fetched once per sync, filtered (archived
// repositories dropped unless include_archived is set, then the
// repositories allow-list applied) and shared by the repositories,
// branch_protection and security_alerts services. When the listing fails,
// each of those enabled services records its own SyncError with the
// organisation as resource. The members service needs an organisation and
// is skipped with a warning otherwise.
//
// # Failure Policy
//
//	service            unit fails when           item degrades when
//	repositories       repository listing fails  -
//	branch_protection  repository listing fails  protection lookup fails -> status "unknown"
//	members            member listing fails      membership lookup fails -> role "unknown";
//	                                             2FA filter fails -> two_factor "unknown"
//	security_alerts    repository listing fails  alert listing fails -> feature "unknown"
package github
