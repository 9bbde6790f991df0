package okta

// Wire types of the Okta management API. Only the fields read by the
// collectors are declared.

// User is an Okta user.
type User struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Created   string      `json:"created,omitempty"`
	LastLogin string      `json:"lastLogin,omitempty"`
	Profile   UserProfile `json:"profile"`
}

// UserProfile holds the profile attributes of a user.
type UserProfile struct {
	Login     string `json:"login"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Factor is an enrolled authentication factor.
type Factor struct {
	ID         string `json:"id"`
	FactorType string `json:"factorType"`
	Provider   string `json:"provider"`
	Status     string `json:"status"`
}

// Group is an Okta group, with stats embedded when requested.
type Group struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Profile  GroupProfile `json:"profile"`
	Embedded *struct {
		Stats *struct {
			UsersCount int `json:"usersCount"`
			AppsCount  int `json:"appsCount"`
		} `json:"stats"`
	} `json:"_embedded,omitempty"`
}

// GroupProfile holds the profile attributes of a group.
type GroupProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Application is an app integration.
type Application struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Label      string `json:"label"`
	Status     string `json:"status"`
	SignOnMode string `json:"signOnMode"`
}

// LogEvent is one System Log event.
type LogEvent struct {
	UUID           string `json:"uuid"`
	Published      string `json:"published"`
	EventType      string `json:"eventType"`
	DisplayMessage string `json:"displayMessage"`
	Severity       string `json:"severity"`
	Actor          struct {
		ID          string `json:"id"`
		AlternateID string `json:"alternateId"`
		DisplayName string `json:"displayName"`
	} `json:"actor"`
	Outcome *struct {
		Result string `json:"result"`
		Reason string `json:"reason"`
	} `json:"outcome,omitempty"`
	Client *struct {
		IPAddress string `json:"ipAddress"`
	} `json:"client,omitempty"`
}

// Policy is a sign-on or password policy.
type Policy struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Priority int    `json:"priority"`
	System   bool   `json:"system"`
	Settings *struct {
		Password *struct {
			Complexity struct {
				MinLength int `json:"minLength"`
			} `json:"complexity"`
		} `json:"password,omitempty"`
	} `json:"settings,omitempty"`
}

// PolicyRule is one rule of a policy.
type PolicyRule struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Actions struct {
		Signon *struct {
			Access        string `json:"access"`
			RequireFactor bool   `json:"requireFactor"`
		} `json:"signon,omitempty"`
	} `json:"actions"`
}
