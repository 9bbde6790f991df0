package okta

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

const outcomeFailure = "FAILURE"

// LogRecord is one flattened System Log event.
type LogRecord struct {
	Published string `json:"published"`
	EventType string `json:"event_type"`
	Actor     string `json:"actor"`
	IPAddress string `json:"ip_address,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Message   string `json:"message,omitempty"`
}

func toLogRecord(e LogEvent) LogRecord {
	r := LogRecord{
		Published: e.Published,
		EventType: e.EventType,
		Actor:     e.Actor.AlternateID,
		Severity:  e.Severity,
		Message:   e.DisplayMessage,
	}
	if e.Outcome != nil {
		r.Outcome = e.Outcome.Result
		r.Reason = e.Outcome.Reason
	}
	if e.Client != nil {
		r.IPAddress = e.Client.IPAddress
	}
	return r
}

// failedSignIn reports whether the record is a rejected sign-in attempt.
func (r LogRecord) failedSignIn() bool {
	if r.Outcome != outcomeFailure {
		return false
	}
	return r.EventType == "user.session.start" || strings.HasPrefix(r.EventType, "user.authentication.")
}

// threat reports whether Okta flagged the record as a security event.
func (r LogRecord) threat() bool {
	return strings.HasPrefix(r.EventType, "security.")
}

// collectSystemLog summarises System Log activity over the lookback window.
func collectSystemLog(ctx context.Context, client API, org string, days, limit int) (*domain.SyncResult, error) {
	since := connectors.Since(days)
	events, err := client.ListLogEvents(ctx, since, time.Now().UTC(), limit)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(events)
	if len(events) == 0 {
		return result, nil
	}

	records := make([]LogRecord, 0, len(events))
	for _, e := range events {
		records = append(records, toLogRecord(e))
	}
	failed := connectors.Select(records, LogRecord.failedSignIn)
	threats := connectors.Select(records, LogRecord.threat)

	ref := "system_log:" + org
	window := since.Format(time.RFC3339)
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Okta System Log activity").
		Describe("%d System Log events in %s over the last %d days", len(records), org, days).
		With("org", org).
		With("lookback_days", days).
		With("since", window).
		With("total_events", len(records)).
		With("by_event_type", connectors.CountBy(records, func(r LogRecord) string { return r.EventType })).
		With("by_outcome", connectors.CountBy(records, func(r LogRecord) string { return r.Outcome })).
		With("truncated", len(events) >= limit).
		Controls(controlsSystemLog...).
		Build())

	if len(failed) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":failed_sign_ins", "Failed Okta sign-ins").
			Describe("%d failed sign-ins in %s since %s", len(failed), org, window).
			With("org", org).
			With("count", len(failed)).
			With("by_actor", connectors.CountBy(failed, func(r LogRecord) string { return r.Actor })).
			With("events", failed).
			Controls(controlsFailedAuth...).
			Build())
	}

	if len(threats) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":threats", "Okta security threat events").
			Describe("%d security threat events in %s since %s", len(threats), org, window).
			With("org", org).
			With("count", len(threats)).
			With("events", threats).
			Controls(controlsThreats...).
			Build())
	}

	return result, nil
}
