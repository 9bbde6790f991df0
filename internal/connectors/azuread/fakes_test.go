package azuread

import (
	"context"
	"errors"
	"time"
)

var errUpstream = errors.New("upstream failure")

// fakeAPI is an in-memory API.
type fakeAPI struct {
	org        *Organization
	orgErr     error
	users      []User
	usersErr   error
	mfa        []MFARegistration
	mfaErr     error
	groups     []Group
	groupsErr  error
	roles      []DirectoryRole
	rolesErr   error
	members    map[string][]DirectoryObject
	membersErr map[string]error
	signIns    []SignIn
	signInErr  error
	policies   []ConditionalAccessPolicy
	policyErr  error

	since time.Time
	limit int
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) Organization(context.Context) (*Organization, error) { return f.org, f.orgErr }

func (f *fakeAPI) ListUsers(context.Context) ([]User, error) { return f.users, f.usersErr }

func (f *fakeAPI) ListMFARegistrations(context.Context) ([]MFARegistration, error) {
	return f.mfa, f.mfaErr
}

func (f *fakeAPI) ListGroups(context.Context) ([]Group, error) { return f.groups, f.groupsErr }

func (f *fakeAPI) ListDirectoryRoles(context.Context) ([]DirectoryRole, error) {
	return f.roles, f.rolesErr
}

func (f *fakeAPI) ListRoleMembers(_ context.Context, roleID string) ([]DirectoryObject, error) {
	if err := f.membersErr[roleID]; err != nil {
		return nil, err
	}
	return f.members[roleID], nil
}

func (f *fakeAPI) ListSignIns(_ context.Context, since time.Time, limit int) ([]SignIn, error) {
	f.since, f.limit = since, limit
	return f.signIns, f.signInErr
}

func (f *fakeAPI) ListConditionalAccessPolicies(context.Context) ([]ConditionalAccessPolicy, error) {
	return f.policies, f.policyErr
}

func member(id, upn string) User {
	return User{ID: id, UserPrincipalName: upn, UserType: "Member", AccountEnabled: true}
}

func guest(id, upn string) User {
	return User{ID: id, UserPrincipalName: upn, UserType: "Guest", AccountEnabled: true}
}

func principal(upn string) DirectoryObject {
	return DirectoryObject{Type: "#microsoft.graph.user", ID: upn, UserPrincipalName: upn}
}

func signIn(upn string, errorCode int, risk string) SignIn {
	s := SignIn{CreatedDateTime: "2026-10-01T10:00:00Z", UserPrincipalName: upn, ClientAppUsed: "Browser", RiskLevelDuringSignIn: risk}
	s.Status.ErrorCode = errorCode
	return s
}

func caPolicy(id, state string, controls ...string) ConditionalAccessPolicy {
	p := ConditionalAccessPolicy{ID: id, DisplayName: id, State: state}
	p.GrantControls = &struct {
		Operator        string   `json:"operator"`
		BuiltInControls []string `json:"builtInControls"`
	}{Operator: "OR", BuiltInControls: controls}
	return p
}

func fakeProvider(api *fakeAPI) *Provider {
	return New(WithClientFactory(func(context.Context, *Config) (API, error) { return api, nil }))
}
