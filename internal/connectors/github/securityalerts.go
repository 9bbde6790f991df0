package github

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// Tri-state results of a per-item lookup.
const (
	statusEnabled  = "enabled"
	statusDisabled = "disabled"
	statusUnknown  = "unknown"
)

// Vulnerability is one open Dependabot alert.
type Vulnerability struct {
	Repository string `json:"repository"`
	Number     int    `json:"number"`
	Package    string `json:"package"`
	Ecosystem  string `json:"ecosystem,omitempty"`
	Severity   string `json:"severity"`
	Advisory   string `json:"advisory,omitempty"`
	Summary    string `json:"summary,omitempty"`
	URL        string `json:"url,omitempty"`
}

// ExposedSecret is one open secret scanning alert.
type ExposedSecret struct {
	Repository string `json:"repository"`
	Number     int    `json:"number"`
	SecretType string `json:"secret_type"`
	URL        string `json:"url,omitempty"`
}

// RepoAlerts summarises the alert state of one repository.
type RepoAlerts struct {
	Repository      string `json:"repository"`
	Dependabot      string `json:"dependabot"`
	SecretScanning  string `json:"secret_scanning"`
	Vulnerabilities int    `json:"open_vulnerabilities"`
	Secrets         int    `json:"open_secrets"`
}

func repoVulnerabilities(ctx context.Context, client API, repo Repository) ([]Vulnerability, error) {
	alerts, err := client.ListDependabotAlerts(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, err
	}
	out := make([]Vulnerability, 0, len(alerts))
	for _, a := range alerts {
		severity := a.GetSecurityVulnerability().GetSeverity()
		if severity == "" {
			severity = a.GetSecurityAdvisory().GetSeverity()
		}
		out = append(out, Vulnerability{
			Repository: repo.FullName,
			Number:     a.GetNumber(),
			Package:    a.GetDependency().GetPackage().GetName(),
			Ecosystem:  a.GetDependency().GetPackage().GetEcosystem(),
			Severity:   severity,
			Advisory:   a.GetSecurityAdvisory().GetGHSAID(),
			Summary:    a.GetSecurityAdvisory().GetSummary(),
			URL:        a.GetHTMLURL(),
		})
	}
	return out, nil
}

func repoSecrets(ctx context.Context, client API, repo Repository) ([]ExposedSecret, error) {
	alerts, err := client.ListSecretScanningAlerts(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, err
	}
	out := make([]ExposedSecret, 0, len(alerts))
	for _, a := range alerts {
		secretType := a.GetSecretTypeDisplayName()
		if secretType == "" {
			secretType = a.GetSecretType()
		}
		out = append(out, ExposedSecret{
			Repository: repo.FullName,
			Number:     a.GetNumber(),
			SecretType: secretType,
			URL:        a.GetHTMLURL(),
		})
	}
	return out, nil
}

// collectSecurityAlerts gathers open Dependabot and secret scanning alerts.
// Either feature may be disabled per repository; a failed lookup marks that
// feature unknown for the repository and moves on.
func collectSecurityAlerts(ctx context.Context, client API, repos []Repository) *domain.SyncResult {
	result := domain.NewSyncResult()
	result.RecordsProcessed = len(repos)
	if len(repos) == 0 {
		return result
	}

	var (
		vulns   []Vulnerability
		secrets []ExposedSecret
		perRepo = make([]RepoAlerts, 0, len(repos))
	)
	for _, repo := range repos {
		ra := RepoAlerts{Repository: repo.FullName, Dependabot: statusUnknown, SecretScanning: statusUnknown}

		if v, err := repoVulnerabilities(ctx, client, repo); err != nil {
			logger.Warn("skipping dependabot alerts", "repository", repo.FullName, "error", err)
		} else {
			ra.Dependabot = statusEnabled
			ra.Vulnerabilities = len(v)
			vulns = append(vulns, v...)
		}

		if s, err := repoSecrets(ctx, client, repo); err != nil {
			logger.Warn("skipping secret scanning alerts", "repository", repo.FullName, "error", err)
		} else {
			ra.SecretScanning = statusEnabled
			ra.Secrets = len(s)
			secrets = append(secrets, s...)
		}
		perRepo = append(perRepo, ra)
	}

	result.AddEvidence(connectors.NewEvidence(TypeID, "security_alerts", "Repository security alerts").
		Describe("%d open vulnerability alerts and %d open secret alerts across %d repositories",
			len(vulns), len(secrets), len(repos)).
		With("total_repositories", len(repos)).
		With("open_vulnerabilities", len(vulns)).
		With("open_secrets", len(secrets)).
		With("by_severity", connectors.CountBy(vulns, func(v Vulnerability) string { return v.Severity })).
		With("dependabot_enabled", connectors.Count(perRepo, func(r RepoAlerts) bool { return r.Dependabot == statusEnabled })).
		With("repositories", perRepo).
		Controls(controlsVulnerabilities...).
		Build())

	critical := connectors.Select(vulns, func(v Vulnerability) bool {
		return v.Severity == "critical" || v.Severity == "high"
	})
	if len(critical) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "security_alerts:critical", "Open critical and high severity vulnerabilities").
			Describe("%d open Dependabot alerts rated high or critical", len(critical)).
			With("count", len(critical)).
			With("vulnerabilities", critical).
			Controls(controlsVulnerabilities...).
			Build())
	}

	if len(secrets) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "security_alerts:secrets", "Exposed secrets").
			Describe("%d open secret scanning alerts", len(secrets)).
			With("count", len(secrets)).
			With("secrets", secrets).
			Controls(controlsSecretExposure...).
			Build())
	}

	return result
}
