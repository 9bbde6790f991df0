package github

// SOC 2 control codes attached to each kind of GitHub evidence.
var (
	controlsRepositories     = []string{"CC6.1", "CC8.1"}
	controlsPublicRepos      = []string{"CC6.1", "C1.1"}
	controlsBranchProtection = []string{"CC8.1", "CC7.1"}
	controlsUnprotected      = []string{"CC8.1"}
	controlsMembers          = []string{"CC6.1", "CC6.2", "CC6.3"}
	controlsAdmins           = []string{"CC6.1", "CC6.3"}
	controlsNo2FA            = []string{"CC6.1", "CC6.6"}
	controlsVulnerabilities  = []string{"CC7.1", "CC7.2"}
	controlsSecretExposure   = []string{"CC6.1", "CC7.2"}
)
