package domain

// IntegrationType describes a supported provider for configuration UIs.
type IntegrationType struct {
	// ID is the stable identifier (e.g. "aws", "okta").
	ID string
	// Name is the human-readable display name.
	Name string
	// Description provides a brief explanation of the provider.
	Description string
	// AuthMethods lists the accepted values of the auth_method discriminator.
	AuthMethods []string
	// Capabilities is the static evidence class set of the provider.
	Capabilities CapabilitySet
	// ConfigKeys lists the configuration fields of the provider.
	ConfigKeys []ConfigKey
	// Services lists the sub-service names accepted in the services map.
	Services []string
}

// ConfigKey describes a configuration field for a provider.
type ConfigKey struct {
	// Key is the configuration key name.
	Key string
	// Label is the human-readable label for UI display.
	Label string
	// Description explains what this field is for.
	Description string
	// Default is the default value for this field (shown in placeholder).
	Default string
	// Required indicates whether this field must be provided.
	// Fields required only by one auth method are not marked Required.
	Required bool
	// Secret indicates whether this field should be masked in UI (e.g., tokens).
	Secret bool
}

// RequiredFields returns the keys marked Required, in declaration order.
func (t IntegrationType) RequiredFields() []string {
	var keys []string
	for _, k := range t.ConfigKeys {
		if k.Required {
			keys = append(keys, k.Key)
		}
	}
	return keys
}

// OptionalFields returns the keys not marked Required, in declaration order.
func (t IntegrationType) OptionalFields() []string {
	var keys []string
	for _, k := range t.ConfigKeys {
		if !k.Required {
			keys = append(keys, k.Key)
		}
	}
	return keys
}

// SecretFields returns the keys that must be masked when displayed.
func (t IntegrationType) SecretFields() []string {
	var keys []string
	for _, k := range t.ConfigKeys {
		if k.Secret {
			keys = append(keys, k.Key)
		}
	}
	return keys
}
