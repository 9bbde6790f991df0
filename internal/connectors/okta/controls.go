package okta

// SOC 2 control codes attached to each kind of Okta evidence.
var (
	controlsUsers        = []string{"CC6.1", "CC6.2", "CC6.3"}
	controlsNoMFA        = []string{"CC6.1", "CC6.6"}
	controlsLockedOut    = []string{"CC6.6", "CC7.2"}
	controlsGroups       = []string{"CC6.1", "CC6.3"}
	controlsApplications = []string{"CC6.1", "CC6.8"}
	controlsPasswordApps = []string{"CC6.1", "CC6.6"}
	controlsSystemLog    = []string{"CC7.2", "CC7.3"}
	controlsFailedAuth   = []string{"CC6.6", "CC7.2"}
	controlsThreats      = []string{"CC7.2", "CC7.3", "CC7.4"}
	controlsPolicies     = []string{"CC6.1", "CC6.6"}
	controlsWeakPolicies = []string{"CC6.1"}
	controlsSignOnNoMFA  = []string{"CC6.1", "CC6.6"}
)
