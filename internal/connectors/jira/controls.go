package jira

// SOC 2 control codes attached to each kind of Jira evidence.
var (
	controlsProjects      = []string{"CC8.1"}
	controlsIssues        = []string{"CC7.3", "CC7.4"}
	controlsOpenIssues    = []string{"CC7.4", "CC7.5"}
	controlsUsers         = []string{"CC6.1", "CC6.2"}
	controlsInactiveUsers = []string{"CC6.2", "CC6.3"}
	controlsPermissions   = []string{"CC6.1", "CC6.3"}
	controlsBroadAccess   = []string{"CC6.1", "C1.1"}
)
