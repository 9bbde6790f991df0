package jira

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ctreminiom/go-atlassian/v2/pkg/infra/models"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

const statusCategoryDone = "done"

// SecurityIssue is one security-labelled issue.
type SecurityIssue struct {
	Key            string   `json:"key"`
	Project        string   `json:"project"`
	Summary        string   `json:"summary"`
	Type           string   `json:"type,omitempty"`
	Status         string   `json:"status,omitempty"`
	StatusCategory string   `json:"status_category,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	Assignee       string   `json:"assignee,omitempty"`
	Labels         []string `json:"labels,omitempty"`
}

// Open reports whether the issue has not reached a done status.
func (i SecurityIssue) Open() bool { return i.StatusCategory != statusCategoryDone }

func toSecurityIssue(issue *models.IssueScheme) SecurityIssue {
	out := SecurityIssue{Key: issue.Key}
	out.Project, _, _ = strings.Cut(issue.Key, "-")
	f := issue.Fields
	if f == nil {
		return out
	}
	out.Summary = f.Summary
	out.Labels = f.Labels
	if f.IssueType != nil {
		out.Type = f.IssueType.Name
	}
	if f.Status != nil {
		out.Status = f.Status.Name
		if f.Status.StatusCategory != nil {
			out.StatusCategory = f.Status.StatusCategory.Key
		}
	}
	if f.Priority != nil {
		out.Priority = f.Priority.Name
	}
	if f.Assignee != nil {
		out.Assignee = f.Assignee.DisplayName
	}
	return out
}

// quoteAll renders values as a JQL list.
func quoteAll(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, strconv.Quote(v))
	}
	return strings.Join(quoted, ", ")
}

// securityJQL selects issues of projects carrying any of labels, created in
// the last days.
func securityJQL(projects []Project, labels []string, days int) string {
	keys := make([]string, 0, len(projects))
	for _, p := range projects {
		keys = append(keys, p.Key)
	}
	return fmt.Sprintf("project in (%s) AND labels in (%s) AND created >= -%dd ORDER BY created DESC",
		quoteAll(keys), quoteAll(labels), days)
}

// collectIssues summarises security-labelled issues across the projects in scope.
func collectIssues(ctx context.Context, client API, cfg *Config, projects []Project) (*domain.SyncResult, error) {
	result := domain.NewSyncResult()
	if len(projects) == 0 {
		return result, nil
	}

	listed, err := client.SearchIssues(ctx, securityJQL(projects, cfg.SecurityLabels, cfg.IssueLookbackDays), cfg.MaxIssues)
	if err != nil {
		return nil, err
	}
	result.RecordsProcessed = len(listed)
	if len(listed) == 0 {
		return result, nil
	}

	issues := make([]SecurityIssue, 0, len(listed))
	for _, issue := range listed {
		issues = append(issues, toSecurityIssue(issue))
	}
	open := connectors.Select(issues, SecurityIssue.Open)

	site := cfg.Site()
	result.AddEvidence(connectors.NewEvidence(TypeID, "issues:"+site+":security", "Security issues").
		Describe("%d security issues created in the last %d days", len(issues), cfg.IssueLookbackDays).
		With("site", site).
		With("labels", cfg.SecurityLabels).
		With("lookback_days", cfg.IssueLookbackDays).
		With("total_issues", len(issues)).
		With("open_issues", len(open)).
		With("by_project", connectors.CountBy(issues, func(i SecurityIssue) string { return i.Project })).
		With("by_priority", connectors.CountBy(issues, func(i SecurityIssue) string { return i.Priority })).
		With("truncated", len(listed) >= cfg.MaxIssues).
		With("issues", issues).
		Controls(controlsIssues...).
		Build())

	if len(open) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "issues:"+site+":security:open", "Open security issues").
			Describe("%d security issues are not resolved", len(open)).
			With("site", site).
			With("count", len(open)).
			With("by_status", connectors.CountBy(open, func(i SecurityIssue) string { return i.Status })).
			With("issues", open).
			Controls(controlsOpenIssues...).
			Build())
	}

	return result, nil
}
