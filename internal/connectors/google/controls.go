package google

// SOC 2 control codes attached to each kind of Google Workspace evidence.
var (
	controlsUsers          = []string{"CC6.1", "CC6.2", "CC6.3"}
	controlsNo2SV          = []string{"CC6.1", "CC6.6"}
	controlsAdmins         = []string{"CC6.1", "CC6.3"}
	controlsSuspended      = []string{"CC6.2"}
	controlsGroups         = []string{"CC6.1", "CC6.3"}
	controlsExternalAccess = []string{"CC6.1", "C1.1"}
	controlsLoginAudit     = []string{"CC7.2", "CC7.3"}
	controlsFailedLogins   = []string{"CC6.6", "CC7.2"}
)
