package azuread

// Wire types of Microsoft Graph v1.0. Only the fields read by the
// collectors are declared.

// Organization is the tenant profile.
type Organization struct {
	ID              string           `json:"id"`
	DisplayName     string           `json:"displayName"`
	VerifiedDomains []VerifiedDomain `json:"verifiedDomains"`
}

// VerifiedDomain is a domain verified for the tenant.
type VerifiedDomain struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

// User is a directory user.
type User struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
	Mail              string `json:"mail"`
	UserType          string `json:"userType"`
	AccountEnabled    bool   `json:"accountEnabled"`
	CreatedDateTime   string `json:"createdDateTime"`
}

// MFARegistration is one row of the authentication methods registration report.
type MFARegistration struct {
	ID                string   `json:"id"`
	UserPrincipalName string   `json:"userPrincipalName"`
	IsMfaRegistered   bool     `json:"isMfaRegistered"`
	MethodsRegistered []string `json:"methodsRegistered"`
}

// Group is a directory group.
type Group struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"displayName"`
	SecurityEnabled bool     `json:"securityEnabled"`
	MailEnabled     bool     `json:"mailEnabled"`
	GroupTypes      []string `json:"groupTypes"`
	Visibility      string   `json:"visibility"`
}

// DirectoryRole is an activated directory role.
type DirectoryRole struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	RoleTemplateID string `json:"roleTemplateId"`
}

// DirectoryObject is a role member: a user, group or service principal.
type DirectoryObject struct {
	Type              string `json:"@odata.type"`
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// SignIn is one interactive sign-in event.
type SignIn struct {
	ID                    string `json:"id"`
	CreatedDateTime       string `json:"createdDateTime"`
	UserPrincipalName     string `json:"userPrincipalName"`
	AppDisplayName        string `json:"appDisplayName"`
	IPAddress             string `json:"ipAddress"`
	ClientAppUsed         string `json:"clientAppUsed"`
	RiskLevelDuringSignIn string `json:"riskLevelDuringSignIn"`
	RiskState             string `json:"riskState"`
	Status                struct {
		ErrorCode     int    `json:"errorCode"`
		FailureReason string `json:"failureReason"`
	} `json:"status"`
}

// ConditionalAccessPolicy is a Conditional Access policy.
type ConditionalAccessPolicy struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	State       string `json:"state"`
	Conditions  struct {
		Users *struct {
			IncludeUsers  []string `json:"includeUsers"`
			ExcludeUsers  []string `json:"excludeUsers"`
			IncludeGroups []string `json:"includeGroups"`
			IncludeRoles  []string `json:"includeRoles"`
		} `json:"users"`
	} `json:"conditions"`
	GrantControls *struct {
		Operator        string   `json:"operator"`
		BuiltInControls []string `json:"builtInControls"`
	} `json:"grantControls"`
}
