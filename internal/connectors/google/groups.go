package google

import (
	"context"
	"strings"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

const memberTypeCustomer = "CUSTOMER"

// External membership states of a group.
const (
	statusPresent = "present"
	statusAbsent  = "absent"
	statusUnknown = "unknown"
)

// Group is one Workspace group with its external membership.
type Group struct {
	Email           string   `json:"email"`
	Name            string   `json:"name,omitempty"`
	DirectMembers   int64    `json:"direct_members"`
	External        string   `json:"external_members"`
	ExternalMembers []string `json:"external_member_emails,omitempty"`
}

// isExternal reports whether a member address lies outside domainName and
// its subdomains.
func isExternal(email, domainName string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	host := strings.ToLower(email[at+1:])
	return host != domainName && !strings.HasSuffix(host, "."+domainName)
}

// externalMembers returns the external addresses of one group.
func externalMembers(ctx context.Context, client API, groupKey, domainName string) ([]string, error) {
	members, err := client.ListMembers(ctx, groupKey)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range members {
		if m.Type == memberTypeCustomer {
			continue
		}
		if isExternal(m.Email, domainName) {
			out = append(out, m.Email)
		}
	}
	return out, nil
}

// collectGroups inventories the groups of domain. A failed member listing
// leaves that group's external status unknown.
func collectGroups(ctx context.Context, client API, domainName string) (*domain.SyncResult, error) {
	listed, err := client.ListGroups(ctx, domainName)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(listed)
	if len(listed) == 0 {
		return result, nil
	}

	groups := make([]Group, 0, len(listed))
	for _, g := range listed {
		group := Group{Email: g.Email, Name: g.Name, DirectMembers: g.DirectMembersCount, External: statusUnknown}
		external, err := externalMembers(ctx, client, g.Email, domainName)
		if err != nil {
			logger.Warn("skipping group members", "group", g.Email, "error", err)
		} else {
			group.External = statusAbsent
			if len(external) > 0 {
				group.External = statusPresent
				group.ExternalMembers = external
			}
		}
		groups = append(groups, group)
	}

	withExternal := connectors.Select(groups, func(g Group) bool { return g.External == statusPresent })

	ref := "groups:" + domainName
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Workspace group inventory").
		Describe("%d groups in %s", len(groups), domainName).
		With("domain", domainName).
		With("total_groups", len(groups)).
		With("by_external_status", connectors.CountBy(groups, func(g Group) string { return g.External })).
		With("groups", groups).
		Controls(controlsGroups...).
		Build())

	if len(withExternal) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":external", "Groups with external members").
			Describe("%d groups in %s have members outside the domain", len(withExternal), domainName).
			With("domain", domainName).
			With("count", len(withExternal)).
			With("groups", withExternal).
			Controls(controlsExternalAccess...).
			Build())
	}

	return result, nil
}
