package azuread

// SOC 2 control codes attached to each kind of Entra ID evidence.
var (
	controlsUsers         = []string{"CC6.1", "CC6.2", "CC6.3"}
	controlsNoMFA         = []string{"CC6.1", "CC6.6"}
	controlsGuests        = []string{"CC6.2", "CC6.3"}
	controlsGroups        = []string{"CC6.1", "CC6.3"}
	controlsPublicGroups  = []string{"CC6.1", "C1.1"}
	controlsRoles         = []string{"CC6.1", "CC6.3"}
	controlsGlobalAdmins  = []string{"CC6.1", "CC6.3"}
	controlsGuestAdmins   = []string{"CC6.2", "CC6.3"}
	controlsSignIns       = []string{"CC7.2", "CC7.3"}
	controlsFailedSignIns = []string{"CC6.6", "CC7.2"}
	controlsRiskySignIns  = []string{"CC7.2", "CC7.3", "CC7.4"}
	controlsCAPolicies    = []string{"CC6.1", "CC6.6"}
	controlsCAEnforcesMFA = []string{"CC6.1", "CC6.6"}
	controlsCAReportOnly  = []string{"CC6.6"}
)
