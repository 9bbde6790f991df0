package aws

// SOC 2 control codes attached to each kind of AWS evidence.
var (
	controlsIAMInventory     = []string{"CC6.1", "CC6.2", "CC6.3"}
	controlsIAMMFA           = []string{"CC6.1", "CC6.6"}
	controlsIAMAccessKeys    = []string{"CC6.1", "CC6.2"}
	controlsS3Inventory      = []string{"CC6.1", "C1.1"}
	controlsS3Public         = []string{"CC6.1", "CC6.6"}
	controlsS3Encryption     = []string{"CC6.1", "CC6.7", "C1.1", "A1.2"}
	controlsCloudTrail       = []string{"CC4.1", "CC7.2", "CC7.3"}
	controlsConfigRules      = []string{"CC4.1", "CC7.1", "CC8.1"}
	controlsGuardDuty        = []string{"CC7.2", "CC7.3", "CC7.4"}
	controlsSecurityGroups   = []string{"CC6.1", "CC6.6"}
	controlsRDSInventory     = []string{"CC6.1", "A1.2"}
	controlsRDSExposure      = []string{"CC6.1", "CC6.6", "CC6.7", "C1.1"}
	controlsELB              = []string{"CC6.6", "CC6.7"}
	controlsCloudWatchAlarms = []string{"CC7.2", "A1.1"}
)
