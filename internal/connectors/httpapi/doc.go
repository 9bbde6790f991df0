// Package httpapi is the JSON REST client shared by providers that have no
// dedicated SDK (Okta, Microsoft Graph).
//
// Requests go through a go-retryablehttp transport that retries 429 and 5xx
// responses and honours Retry-After. A token bucket throttles requests
// proactively and the remaining-quota headers returned by the API pause
// requests until the window resets. Both Link header and @odata.nextLink
// pagination are supported.
package httpapi
