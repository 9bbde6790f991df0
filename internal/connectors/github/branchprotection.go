package github

import (
	"context"
	"errors"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// Protection states of a default branch.
const (
	protectionProtected   = "protected"
	protectionUnprotected = "unprotected"
	protectionUnknown     = "unknown"
)

// BranchProtection is the protection summary of one default branch.
type BranchProtection struct {
	Repository        string `json:"repository"`
	Branch            string `json:"branch"`
	Status            string `json:"status"`
	RequiredReviews   int    `json:"required_approving_reviews"`
	DismissStale      bool   `json:"dismiss_stale_reviews"`
	CodeOwnerReviews  bool   `json:"require_code_owner_reviews"`
	StatusChecks      bool   `json:"required_status_checks"`
	EnforceAdmins     bool   `json:"enforce_admins"`
	AllowsForcePushes bool   `json:"allows_force_pushes"`
}

func summariseProtection(bp *BranchProtection, p *gh.Protection) {
	bp.Status = protectionProtected
	if r := p.GetRequiredPullRequestReviews(); r != nil {
		bp.RequiredReviews = r.RequiredApprovingReviewCount
		bp.DismissStale = r.DismissStaleReviews
		bp.CodeOwnerReviews = r.RequireCodeOwnerReviews
	}
	bp.StatusChecks = p.GetRequiredStatusChecks() != nil
	if a := p.GetEnforceAdmins(); a != nil {
		bp.EnforceAdmins = a.Enabled
	}
	if f := p.GetAllowForcePushes(); f != nil {
		bp.AllowsForcePushes = f.Enabled
	}
}

// collectBranchProtection inspects the default branch of every repository.
// A failed lookup marks that repository unknown and moves on.
func collectBranchProtection(ctx context.Context, client API, repos []Repository) *domain.SyncResult {
	result := domain.NewSyncResult()
	result.RecordsProcessed = len(repos)
	if len(repos) == 0 {
		return result
	}

	branches := make([]BranchProtection, 0, len(repos))
	for _, repo := range repos {
		bp := BranchProtection{Repository: repo.FullName, Branch: repo.DefaultBranch, Status: protectionUnknown}
		if repo.DefaultBranch == "" {
			// Empty repositories have no default branch to protect.
			logger.Debug("skipping repository without default branch", "repository", repo.FullName)
			branches = append(branches, bp)
			continue
		}
		p, err := client.BranchProtection(ctx, repo.Owner, repo.Name, repo.DefaultBranch)
		switch {
		case err == nil:
			summariseProtection(&bp, p)
		case errors.Is(err, gh.ErrBranchNotProtected):
			bp.Status = protectionUnprotected
		default:
			logger.Warn("skipping branch protection", "repository", repo.FullName, "error", err)
		}
		branches = append(branches, bp)
	}

	unprotected := connectors.Select(branches, func(b BranchProtection) bool { return b.Status == protectionUnprotected })
	protected := connectors.Count(branches, func(b BranchProtection) bool { return b.Status == protectionProtected })

	result.AddEvidence(connectors.NewEvidence(TypeID, "branch_protection", "Default branch protection").
		Describe("%d of %d default branches protected", protected, len(branches)).
		With("total_branches", len(branches)).
		With("by_status", connectors.CountBy(branches, func(b BranchProtection) string { return b.Status })).
		With("requiring_reviews", connectors.Count(branches, func(b BranchProtection) bool { return b.RequiredReviews > 0 })).
		With("protected_percent", connectors.Percent(protected, len(branches))).
		With("branches", branches).
		Controls(controlsBranchProtection...).
		Build())

	if len(unprotected) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "branch_protection:unprotected", "Unprotected default branches").
			Describe("%d repositories have no protection on their default branch", len(unprotected)).
			With("count", len(unprotected)).
			With("branches", unprotected).
			Controls(controlsUnprotected...).
			Build())
	}

	return result
}
