package okta

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// GroupSummary is one group with its member and app counts.
type GroupSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Members int    `json:"members"`
	Apps    int    `json:"apps"`
}

// collectGroups inventories groups.
func collectGroups(ctx context.Context, client API, org string) (*domain.SyncResult, error) {
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
		s := GroupSummary{ID: g.ID, Name: g.Profile.Name, Type: g.Type}
		if g.Embedded != nil && g.Embedded.Stats != nil {
			s.Members = g.Embedded.Stats.UsersCount
			s.Apps = g.Embedded.Stats.AppsCount
		}
		groups = append(groups, s)
	}

	result.AddEvidence(connectors.NewEvidence(TypeID, "groups:"+org, "Okta group inventory").
		Describe("%d groups in %s", len(groups), org).
		With("org", org).
		With("total_groups", len(groups)).
		With("by_type", connectors.CountBy(groups, func(g GroupSummary) string { return g.Type })).
		With("groups", groups).
		Controls(controlsGroups...).
		Build())
	return result, nil
}
