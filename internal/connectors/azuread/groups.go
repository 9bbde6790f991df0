package azuread

import (
	"context"
	"slices"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Group kinds.
const (
	kindMicrosoft365 = "microsoft_365"
	kindSecurity     = "security"
	kindMailSecurity = "mail_enabled_security"
	kindDistribution = "distribution"
	groupTypeUnified = "Unified"
	visibilityPublic = "Public"
)

// GroupSummary is one directory group.
type GroupSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Visibility string `json:"visibility,omitempty"`
}

func groupKind(g Group) string {
	switch {
	case slices.Contains(g.GroupTypes, groupTypeUnified):
		return kindMicrosoft365
	case g.SecurityEnabled && g.MailEnabled:
		return kindMailSecurity
	case g.SecurityEnabled:
		return kindSecurity
	default:
		return kindDistribution
	}
}

// collectGroups inventories groups and flags public Microsoft 365 groups.
func collectGroups(ctx context.Context, client API, tenant string) (*domain.SyncResult, error) {
	listed, err := client.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(listed)
	if len(listed) == 0 {
		return result, nil
	}

	groups := make([]GroupSummary, 0, len(listed))
	for _, g := range listed {
		groups = append(groups, GroupSummary{ID: g.ID, Name: g.DisplayName, Kind: groupKind(g), Visibility: g.Visibility})
	}
	public := connectors.Select(groups, func(g GroupSummary) bool {
		return g.Kind == kindMicrosoft365 && g.Visibility == visibilityPublic
	})

	ref := "groups:" + tenant
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Entra ID group inventory").
		Describe("%d groups in tenant %s", len(groups), tenant).
		With("tenant_id", tenant).
		With("total_groups", len(groups)).
		With("by_kind", connectors.CountBy(groups, func(g GroupSummary) string { return g.Kind })).
		With("groups", groups).
		Controls(controlsGroups...).
		Build())

	if len(public) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":public", "Public Microsoft 365 groups").
			Describe("%d Microsoft 365 groups in tenant %s are open to every member", len(public), tenant).
			With("tenant_id", tenant).
			With("count", len(public)).
			With("groups", public).
			Controls(controlsPublicGroups...).
			Build())
	}

	return result, nil
}
