package google

import (
	"context"
	"strings"
	"time"

	reports "google.golang.org/api/admin/reports/v1"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Login event names reported by the Reports API login application.
const (
	eventLoginFailure = "login_failure"
	eventSuspicious   = "suspicious_login"
)

// LoginEvent is one flattened login audit event.
type LoginEvent struct {
	Time        string `json:"time"`
	Actor       string `json:"actor"`
	IPAddress   string `json:"ip_address,omitempty"`
	Event       string `json:"event"`
	LoginType   string `json:"login_type,omitempty"`
	FailureType string `json:"failure_type,omitempty"`
	Suspicious  bool   `json:"suspicious"`
}

// Failed reports whether the event is a rejected sign-in.
func (e LoginEvent) Failed() bool { return e.Event == eventLoginFailure }

// toLoginEvents flattens one activity into one record per event.
func toLoginEvents(a *reports.Activity) []LoginEvent {
	base := LoginEvent{IPAddress: a.IpAddress}
	if a.Id != nil {
		base.Time = a.Id.Time
	}
	if a.Actor != nil {
		base.Actor = a.Actor.Email
	}

	out := make([]LoginEvent, 0, len(a.Events))
	for _, ev := range a.Events {
		e := base
		e.Event = ev.Name
		e.Suspicious = strings.HasPrefix(ev.Name, eventSuspicious)
		for _, p := range ev.Parameters {
			switch p.Name {
			case "login_type":
				e.LoginType = p.Value
			case "login_failure_type":
				e.FailureType = p.Value
			case "is_suspicious":
				e.Suspicious = e.Suspicious || p.BoolValue
			}
		}
		out = append(out, e)
	}
	return out
}

// collectLoginAudit summarises login activity over the lookback window.
func collectLoginAudit(ctx context.Context, client API, domainName string, days, limit int) (*domain.SyncResult, error) {
	since := connectors.Since(days)
	activities, err := client.ListLoginActivities(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(activities)
	if len(activities) == 0 {
		return result, nil
	}

	var events []LoginEvent
	for _, a := range activities {
		events = append(events, toLoginEvents(a)...)
	}
	failed := connectors.Select(events, LoginEvent.Failed)
	suspicious := connectors.Select(events, func(e LoginEvent) bool { return e.Suspicious })

	ref := "login_audit:" + domainName
	window := since.Format(time.RFC3339)
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Workspace login activity").
		Describe("%d login events in %s over the last %d days", len(events), domainName, days).
		With("domain", domainName).
		With("lookback_days", days).
		With("since", window).
		With("total_events", len(events)).
		With("by_event", connectors.CountBy(events, func(e LoginEvent) string { return e.Event })).
		With("truncated", len(activities) >= limit).
		Controls(controlsLoginAudit...).
		Build())

	if len(failed) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":failed", "Failed Workspace logins").
			Describe("%d failed logins in %s since %s", len(failed), domainName, window).
			With("domain", domainName).
			With("count", len(failed)).
			With("by_actor", connectors.CountBy(failed, func(e LoginEvent) string { return e.Actor })).
			With("events", failed).
			Controls(controlsFailedLogins...).
			Build())
	}

	if len(suspicious) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":suspicious", "Suspicious Workspace logins").
			Describe("%d logins in %s were flagged as suspicious since %s", len(suspicious), domainName, window).
			With("domain", domainName).
			With("count", len(suspicious)).
			With("events", suspicious).
			Controls(controlsFailedLogins...).
			Build())
	}

	return result, nil
}
