package okta

import (
	"context"
	"errors"
	"time"
)

var errUpstream = errors.New("upstream failure")

// fakeAPI is an in-memory API.
type fakeAPI struct {
	me        *User
	meErr     error
	users     []User
	usersErr  error
	factors   map[string][]Factor
	factorErr map[string]error
	groups    []Group
	groupsErr error
	apps      []Application
	appsErr   error
	events    []LogEvent
	eventsErr error
	policies  map[string][]Policy
	policyErr error
	rules     map[string][]PolicyRule
	rulesErr  map[string]error

	since time.Time
	limit int
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) CurrentUser(context.Context) (*User, error) { return f.me, f.meErr }

func (f *fakeAPI) ListUsers(context.Context) ([]User, error) { return f.users, f.usersErr }

func (f *fakeAPI) ListFactors(_ context.Context, userID string) ([]Factor, error) {
	if err := f.factorErr[userID]; err != nil {
		return nil, err
	}
	return f.factors[userID], nil
}

func (f *fakeAPI) ListGroups(context.Context) ([]Group, error) { return f.groups, f.groupsErr }

func (f *fakeAPI) ListApplications(context.Context) ([]Application, error) { return f.apps, f.appsErr }

func (f *fakeAPI) ListLogEvents(_ context.Context, since, _ time.Time, limit int) ([]LogEvent, error) {
	f.since, f.limit = since, limit
	return f.events, f.eventsErr
}

func (f *fakeAPI) ListPolicies(_ context.Context, policyType string) ([]Policy, error) {
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	return f.policies[policyType], nil
}

func (f *fakeAPI) ListPolicyRules(_ context.Context, policyID string) ([]PolicyRule, error) {
	if err := f.rulesErr[policyID]; err != nil {
		return nil, err
	}
	return f.rules[policyID], nil
}

func user(id, login, status string) User {
	return User{ID: id, Status: status, Profile: UserProfile{Login: login, Email: login}}
}

func factor(kind, status string) Factor {
	return Factor{ID: kind + "-1", FactorType: kind, Status: status}
}

func logEvent(eventType, actor, result string) LogEvent {
	e := LogEvent{Published: "2026-10-01T10:00:00.000Z", EventType: eventType}
	e.Actor.AlternateID = actor
	if result != "" {
		e.Outcome = &struct {
			Result string `json:"result"`
			Reason string `json:"reason"`
		}{Result: result}
	}
	return e
}

func signOnRule(access string, requireFactor bool) PolicyRule {
	r := PolicyRule{ID: "rule", Status: policyActive}
	r.Actions.Signon = &struct {
		Access        string `json:"access"`
		RequireFactor bool   `json:"requireFactor"`
	}{Access: access, RequireFactor: requireFactor}
	return r
}

func passwordPolicy(id string, minLength int) Policy {
	p := Policy{ID: id, Name: id, Type: policyPassword, Status: policyActive}
	p.Settings = &struct {
		Password *struct {
			Complexity struct {
				MinLength int `json:"minLength"`
			} `json:"complexity"`
		} `json:"password,omitempty"`
	}{}
	p.Settings.Password = &struct {
		Complexity struct {
			MinLength int `json:"minLength"`
		} `json:"complexity"`
	}{}
	p.Settings.Password.Complexity.MinLength = minLength
	return p
}

func fakeProvider(api *fakeAPI) *Provider {
	return New(WithClientFactory(func(context.Context, *Config) (API, error) { return api, nil }))
}
