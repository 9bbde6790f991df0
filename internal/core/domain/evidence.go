package domain

import "time"

// EvidenceKind classifies how evidence was obtained.
type EvidenceKind string

// EvidenceKindAutomated marks evidence collected by a provider sync.
const EvidenceKindAutomated EvidenceKind = "automated"

// CollectedEvidence is one control-tagged artefact produced by a collector.
// It is created once and never modified afterwards.
type CollectedEvidence struct {
	// Title is a short human-readable label.
	Title string
	// Description is optional free text.
	Description string
	// Kind is always EvidenceKindAutomated for synced evidence.
	Kind EvidenceKind
	// SourceProvider is the integration type that produced the evidence.
	SourceProvider string
	// SourceReference is a stable key for what was inspected, e.g. "s3:buckets".
	SourceReference string
	// Data holds summary statistics plus the itemised findings.
	Data map[string]any
	// ControlCodes lists the compliance controls the evidence supports.
	ControlCodes []string
	// CollectedAt is when the collector built the evidence.
	CollectedAt time.Time
}

// HasControl reports whether the evidence is tagged with the given control code.
func (e CollectedEvidence) HasControl(code string) bool {
	for _, c := range e.ControlCodes {
		if c == code {
			return true
		}
	}
	return false
}
