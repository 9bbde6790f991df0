package github

import (
	"context"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Repository is the summarised state of one repository.
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Owner         string `json:"owner"`
	Visibility    string `json:"visibility"`
	DefaultBranch string `json:"default_branch"`
	Archived      bool   `json:"archived"`
	Fork          bool   `json:"fork"`
	PushedAt      string `json:"pushed_at,omitempty"`
}

func toRepository(r *gh.Repository) Repository {
	repo := Repository{
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Owner:         r.GetOwner().GetLogin(),
		Visibility:    r.GetVisibility(),
		DefaultBranch: r.GetDefaultBranch(),
		Archived:      r.GetArchived(),
		Fork:          r.GetFork(),
	}
	if repo.Visibility == "" {
		repo.Visibility = "public"
		if r.GetPrivate() {
			repo.Visibility = "private"
		}
	}
	if !r.GetPushedAt().IsZero() {
		repo.PushedAt = r.GetPushedAt().UTC().Format(time.RFC3339)
	}
	return repo
}

// ListRepositories lists, converts and scopes the repositories of cfg.
// Archived repositories are dropped unless include_archived is set, then
// the repositories allow-list is applied.
func ListRepositories(ctx context.Context, client API, cfg *Config) ([]Repository, error) {
	raw, err := client.ListRepositories(ctx, cfg.Organization)
	if err != nil {
		return nil, err
	}
	repos := make([]Repository, 0, len(raw))
	for _, r := range raw {
		repo := toRepository(r)
		if repo.Archived && !cfg.IncludeArchived {
			continue
		}
		repos = append(repos, repo)
	}
	return connectors.FilterAllowList(repos, cfg.Repositories,
		func(r Repository) string { return r.Name },
		func(r Repository) string { return r.FullName },
	), nil
}

// collectRepositories inventories the scoped repositories.
func collectRepositories(repos []Repository) *domain.SyncResult {
	result := domain.NewSyncResult()
	result.RecordsProcessed = len(repos)
	if len(repos) == 0 {
		return result
	}

	public := connectors.Select(repos, func(r Repository) bool { return r.Visibility == "public" })

	result.AddEvidence(connectors.NewEvidence(TypeID, "repositories", "Repository inventory").
		Describe("%d repositories in scope", len(repos)).
		With("total_repositories", len(repos)).
		With("by_visibility", connectors.CountBy(repos, func(r Repository) string { return r.Visibility })).
		With("archived", connectors.Count(repos, func(r Repository) bool { return r.Archived })).
		With("forks", connectors.Count(repos, func(r Repository) bool { return r.Fork })).
		With("repositories", repos).
		Controls(controlsRepositories...).
		Build())

	if len(public) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "repositories:public", "Public repositories").
			Describe("%d of %d repositories are publicly visible", len(public), len(repos)).
			With("count", len(public)).
			With("repositories", public).
			Controls(controlsPublicRepos...).
			Build())
	}

	return result
}
