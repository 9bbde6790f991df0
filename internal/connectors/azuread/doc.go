// Package azuread implements the evidence provider for Azure AD (Entra ID).
//
// The provider reads one tenant through Microsoft Graph v1.0, following
// @odata.nextLink pagination.
//
// # Authentication
//
//   - client_secret: the client credentials grant of an app registration
//     holding the Graph application permissions listed per service. Tokens
//     are requested for https://graph.microsoft.com/.default.
//   - oauth: a delegated access token, or a refresh token together with the
//     client_id and client_secret used to redeem it.
//
// Both grants go to https://login.microsoftonline.com/<tenant_id>.
//
// # Licensing
//
// Sign-in logs and the MFA registration report need Entra ID P1. Without
// it Graph answers 403: the sign_in_logs unit fails, and the users unit
// reports MFA as "unknown".
//
// # Failure Policy
//
//	service             unit fails when               item degrades when
//	users               user listing fails            registration report fails -> mfa "unknown"
//	groups              group listing fails           -
//	directory_roles     role listing fails            member listing fails -> members "unknown"
//	sign_in_logs        sign-in listing fails         -
//	conditional_access  policy listing fails          -
package azuread
