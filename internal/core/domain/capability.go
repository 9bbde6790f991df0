package domain

import (
	"fmt"
	"strings"
)

// Capability is one class of evidence a provider can contribute.
// Capabilities are bit flags so a provider's full set fits in one CapabilitySet.
type Capability uint16

const (
	// CapUserSync covers user and account inventories.
	CapUserSync Capability = 1 << iota
	// CapAccessSync covers group, role and permission assignments.
	CapAccessSync
	// CapAuditLogs covers sign-in, activity and system logs.
	CapAuditLogs
	// CapSecurityFindings covers alerts and threat detections.
	CapSecurityFindings
	// CapComplianceStatus covers rule and policy compliance results.
	CapComplianceStatus
	// CapAssetInventory covers infrastructure and repository inventories.
	CapAssetInventory
	// CapConfigurationState covers security-relevant configuration settings.
	CapConfigurationState
)

// allCapabilities lists every capability in declaration order.
var allCapabilities = []Capability{
	CapUserSync,
	CapAccessSync,
	CapAuditLogs,
	CapSecurityFindings,
	CapComplianceStatus,
	CapAssetInventory,
	CapConfigurationState,
}

var capabilityNames = map[Capability]string{
	CapUserSync:           "user_sync",
	CapAccessSync:         "access_sync",
	CapAuditLogs:          "audit_logs",
	CapSecurityFindings:   "security_findings",
	CapComplianceStatus:   "compliance_status",
	CapAssetInventory:     "asset_inventory",
	CapConfigurationState: "configuration_state",
}

// AllCapabilities returns the full capability vocabulary in declaration order.
func AllCapabilities() []Capability {
	result := make([]Capability, len(allCapabilities))
	copy(result, allCapabilities)
	return result
}

// String returns the snake_case name of the capability.
func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", uint16(c))
}

// ParseCapability resolves a capability from its name.
// Matching is case-insensitive.
func ParseCapability(name string) (Capability, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range allCapabilities {
		if capabilityNames[c] == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown capability %q", ErrInvalidInput, name)
}

// CapabilitySet is an unordered set of capabilities.
type CapabilitySet uint16

// NewCapabilitySet builds a set from the given capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s |= CapabilitySet(c)
	}
	return s
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) != 0
}

// Len returns the number of capabilities in the set.
func (s CapabilitySet) Len() int {
	n := 0
	for _, c := range allCapabilities {
		if s.Has(c) {
			n++
		}
	}
	return n
}

// List returns the capabilities in the set in declaration order.
func (s CapabilitySet) List() []Capability {
	var caps []Capability
	for _, c := range allCapabilities {
		if s.Has(c) {
			caps = append(caps, c)
		}
	}
	return caps
}

// Strings returns the capability names in declaration order.
func (s CapabilitySet) Strings() []string {
	caps := s.List()
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, c.String())
	}
	return names
}

// String joins the capability names with commas.
func (s CapabilitySet) String() string {
	return strings.Join(s.Strings(), ",")
}
