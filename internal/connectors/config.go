package connectors

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Common configuration keys.
const (
	KeyAuthMethod = "auth_method"
	KeyServices   = "services"
)

// quotedField extracts the first quoted name from a mapstructure error message.
var quotedField = regexp.MustCompile(`'([^']+)'`)

// hostnameRegex matches a DNS hostname with at least two labels.
var hostnameRegex = regexp.MustCompile(`^(?i)[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`)

// DecodeConfig decodes an untyped configuration document into out.
//
// Decoding is weakly typed so documents coming from TOML, JSON or flat
// string maps decode alike ("true" and true, "7" and 7). A string assigned
// to a list field is split on commas. A decode failure is returned as a
// *domain.ConfigError naming the offending field.
func DecodeConfig(raw map[string]any, out any) error {
	if raw == nil {
		raw = map[string]any{}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			trimStringsHook,
		),
	})
	if err != nil {
		return fmt.Errorf("build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		field := "config"
		if m := quotedField.FindStringSubmatch(err.Error()); len(m) == 2 {
			field = m[1]
		}
		return domain.NewConfigError(field, "%s", strings.TrimSpace(err.Error()))
	}
	return nil
}

// trimStringsHook strips surrounding whitespace from every decoded string.
func trimStringsHook(from, _ reflect.Kind, data any) (any, error) {
	if s, ok := data.(string); ok && from == reflect.String {
		return strings.TrimSpace(s), nil
	}
	return data, nil
}

// Services is the per-sub-service enablement map of a provider config.
// Omitted services are enabled.
type Services map[string]bool

// Enabled reports whether the named service should run.
func (s Services) Enabled(name string) bool {
	enabled, ok := s[name]
	return !ok || enabled
}

// Validate rejects service names outside known.
func (s Services) Validate(known []string) error {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !contains(known, name) {
			return domain.NewConfigError(KeyServices+"."+name,
				"unknown service; expected one of %s", strings.Join(known, ", "))
		}
	}
	return nil
}

// EnabledOf returns the enabled subset of known, preserving order.
func (s Services) EnabledOf(known []string) []string {
	var out []string
	for _, name := range known {
		if s.Enabled(name) {
			out = append(out, name)
		}
	}
	return out
}

// AllDisabled reports whether no service in known would run.
func (s Services) AllDisabled(known []string) bool {
	return len(s.EnabledOf(known)) == 0
}

// RequireString fails when value is blank.
func RequireString(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewConfigError(field, "is required")
	}
	return nil
}

// RequireOneOf fails when value is not one of allowed.
func RequireOneOf(field, value string, allowed ...string) error {
	if value == "" {
		return domain.NewConfigError(field, "is required; expected one of %s", strings.Join(allowed, ", "))
	}
	if !contains(allowed, value) {
		return domain.NewConfigError(field, "unsupported value %q; expected one of %s",
			value, strings.Join(allowed, ", "))
	}
	return nil
}

// RequireHTTPS parses raw as an absolute https URL.
func RequireHTTPS(field, raw string) (*url.URL, error) {
	if err := RequireString(field, raw); err != nil {
		return nil, err
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, domain.NewConfigError(field, "must be an absolute URL")
	}
	if u.Scheme != "https" {
		return nil, domain.NewConfigError(field, "must use the https scheme, got %q", u.Scheme)
	}
	return u, nil
}

// RequireHostname fails when host is not a DNS name with at least two labels.
func RequireHostname(field, host string) error {
	if err := RequireString(field, host); err != nil {
		return err
	}
	if !hostnameRegex.MatchString(host) {
		return domain.NewConfigError(field, "%q is not a valid domain name", host)
	}
	return nil
}

// RequireSuffix fails when host does not end in one of suffixes.
func RequireSuffix(field, host string, suffixes ...string) error {
	lower := strings.ToLower(host)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return nil
		}
	}
	return domain.NewConfigError(field, "%q must end with one of %s", host, strings.Join(suffixes, ", "))
}

// NonNegative fails when value is below zero.
func NonNegative(field string, value int) error {
	if value < 0 {
		return domain.NewConfigError(field, "must not be negative, got %d", value)
	}
	return nil
}

// DefaultInt returns def when value is zero.
func DefaultInt(value, def int) int {
	if value == 0 {
		return def
	}
	return value
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
