package okta

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

const appActive = "ACTIVE"

// passwordSignOnModes are sign-on modes where Okta stores or replays a
// password instead of federating.
var passwordSignOnModes = map[string]bool{
	"BASIC_AUTH":            true,
	"BROWSER_PLUGIN":        true,
	"AUTO_LOGIN":            true,
	"SECURE_PASSWORD_STORE": true,
}

// AppSummary is one app integration.
type AppSummary struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	SignOnMode string `json:"sign_on_mode"`
}

// collectApplications inventories app integrations and their sign-on modes.
func collectApplications(ctx context.Context, client API, org string) (*domain.SyncResult, error) {
	listed, err := client.ListApplications(ctx)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(listed)
	if len(listed) == 0 {
		return result, nil
	}

	apps := make([]AppSummary, 0, len(listed))
	for _, a := range listed {
		apps = append(apps, AppSummary{ID: a.ID, Label: a.Label, Name: a.Name, Status: a.Status, SignOnMode: a.SignOnMode})
	}
	passwordApps := connectors.Select(apps, func(a AppSummary) bool {
		return a.Status == appActive && passwordSignOnModes[a.SignOnMode]
	})

	result.AddEvidence(connectors.NewEvidence(TypeID, "applications:"+org, "Okta application inventory").
		Describe("%d applications in %s", len(apps), org).
		With("org", org).
		With("total_applications", len(apps)).
		With("by_sign_on_mode", connectors.CountBy(apps, func(a AppSummary) string { return a.SignOnMode })).
		With("applications", apps).
		Controls(controlsApplications...).
		Build())

	if len(passwordApps) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "applications:"+org+":password_sign_on", "Applications using password sign-on").
			Describe("%d active applications in %s sign users in with a stored password", len(passwordApps), org).
			With("org", org).
			With("count", len(passwordApps)).
			With("applications", passwordApps).
			Controls(controlsPasswordApps...).
			Build())
	}

	return result, nil
}
