package domain

import "time"

// SyncContext carries the invocation-scoped parameters of one sync.
// It is a value type and is never modified during a sync.
type SyncContext struct {
	// OrganizationID identifies the tenant the sync runs for.
	OrganizationID string
	// IntegrationID identifies the configured integration instance.
	IntegrationID string
	// FullSync is false for incremental syncs.
	FullSync bool
}

// SyncError records the failure of one unit of work.
type SyncError struct {
	// Code is machine readable, e.g. "s3_sync_failed".
	Code string
	// Message is the human-readable cause.
	Message string
	// Resource identifies the failed fan-out unit (region, repository, project).
	// Empty when the unit has no fan-out dimension.
	Resource string
}

// SyncStatus summarises a SyncResult for status displays.
type SyncStatus string

const (
	// SyncStatusSucceeded means every unit of work completed.
	SyncStatusSucceeded SyncStatus = "succeeded"
	// SyncStatusPartial means at least one unit of work failed.
	SyncStatusPartial SyncStatus = "partial"
	// SyncStatusFailed means the sync could not start.
	SyncStatusFailed SyncStatus = "failed"
)

// SyncResult is the aggregate outcome of a sync or of one unit of work.
//
// Results combine only through Merge. The zero value and NewSyncResult are
// both the identity of Merge.
type SyncResult struct {
	RecordsProcessed int
	RecordsCreated   int
	Evidence         []CollectedEvidence
	Errors           []SyncError
}

// NewSyncResult returns an empty result.
func NewSyncResult() *SyncResult {
	return &SyncResult{}
}

// Merge folds other into r. Counters are added and lists are appended
// after r's own entries. A nil other is a no-op.
func (r *SyncResult) Merge(other *SyncResult) *SyncResult {
	if other == nil {
		return r
	}
	r.RecordsProcessed += other.RecordsProcessed
	r.RecordsCreated += other.RecordsCreated
	r.Evidence = append(r.Evidence, other.Evidence...)
	r.Errors = append(r.Errors, other.Errors...)
	return r
}

// Merged returns a new result holding a followed by b. Neither input is modified.
func Merged(a, b *SyncResult) *SyncResult {
	out := NewSyncResult()
	out.Merge(a)
	out.Merge(b)
	return out
}

// AddEvidence appends evidence and counts each item as created.
func (r *SyncResult) AddEvidence(items ...CollectedEvidence) {
	r.Evidence = append(r.Evidence, items...)
	r.RecordsCreated += len(items)
}

// AddError appends a SyncError.
func (r *SyncResult) AddError(code, message, resource string) {
	r.Errors = append(r.Errors, SyncError{Code: code, Message: message, Resource: resource})
}

// HasErrors reports whether any unit of work failed.
func (r *SyncResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// IsEmpty reports whether the result is the merge identity.
func (r *SyncResult) IsEmpty() bool {
	return r.RecordsProcessed == 0 && r.RecordsCreated == 0 &&
		len(r.Evidence) == 0 && len(r.Errors) == 0
}

// Status classifies the result.
func (r *SyncResult) Status() SyncStatus {
	if r.HasErrors() {
		return SyncStatusPartial
	}
	return SyncStatusSucceeded
}

// SyncRun is the persisted record of one sync invocation.
type SyncRun struct {
	ID               string
	IntegrationType  string
	OrganizationID   string
	IntegrationID    string
	FullSync         bool
	Status           SyncStatus
	RecordsProcessed int
	RecordsCreated   int
	ErrorCount       int
	// Message holds the top-level failure when Status is SyncStatusFailed.
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (r SyncRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
