package domain

// ConnectionDetails describes the identity confirmed by a connection test.
type ConnectionDetails struct {
	// AccountID is the remote account, tenant, organisation or domain identifier.
	AccountID string
	// AccountName is a display name for the account, when the remote system has one.
	AccountName string
	// Permissions lists the API permissions implied by the enabled services.
	// It is derived from configuration and never queried from the remote system.
	Permissions []string
	// Metadata carries provider-specific identity attributes.
	Metadata map[string]string
}
