package github

import (
	"context"
	"errors"
	"sync/atomic"

	gh "github.com/google/go-github/v80/github"
)

var errUpstream = errors.New("upstream failure")

// fakeAPI is an in-memory API.
type fakeAPI struct {
	repos       []*gh.Repository
	reposErr    error
	repoCalls   atomic.Int32
	protections map[string]*gh.Protection
	protectErr  map[string]error
	members     []string
	membersErr  error
	roles       map[string]string
	roleErr     map[string]error
	no2FA       []string
	no2FAErr    error
	dependabot  map[string][]*gh.DependabotAlert
	secrets     map[string][]*gh.SecretScanningAlert
	alertsErr   map[string]error
	user        *gh.User
	org         *gh.Organization
	identityErr error
}

var _ API = (*fakeAPI)(nil)

func repo(owner, name string, opts ...func(*gh.Repository)) *gh.Repository {
	r := &gh.Repository{
		Name:          gh.Ptr(name),
		FullName:      gh.Ptr(owner + "/" + name),
		Owner:         &gh.User{Login: gh.Ptr(owner)},
		Visibility:    gh.Ptr("private"),
		DefaultBranch: gh.Ptr("main"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func archived(r *gh.Repository) { r.Archived = gh.Ptr(true) }

func public(r *gh.Repository) { r.Visibility = gh.Ptr("public") }

func (f *fakeAPI) AuthenticatedUser(context.Context) (*gh.User, error) {
	return f.user, f.identityErr
}

func (f *fakeAPI) Organization(context.Context, string) (*gh.Organization, error) {
	return f.org, f.identityErr
}

func (f *fakeAPI) ListRepositories(context.Context, string) ([]*gh.Repository, error) {
	f.repoCalls.Add(1)
	return f.repos, f.reposErr
}

func (f *fakeAPI) BranchProtection(_ context.Context, owner, name, _ string) (*gh.Protection, error) {
	key := owner + "/" + name
	if err := f.protectErr[key]; err != nil {
		return nil, err
	}
	if p, ok := f.protections[key]; ok {
		return p, nil
	}
	return nil, gh.ErrBranchNotProtected
}

func (f *fakeAPI) ListMembers(_ context.Context, _ string, filter string) ([]*gh.User, error) {
	logins := f.members
	err := f.membersErr
	if filter == filter2FADisabled {
		logins, err = f.no2FA, f.no2FAErr
	}
	if err != nil {
		return nil, err
	}
	users := make([]*gh.User, 0, len(logins))
	for _, l := range logins {
		users = append(users, &gh.User{Login: gh.Ptr(l)})
	}
	return users, nil
}

func (f *fakeAPI) Membership(_ context.Context, _ string, user string) (*gh.Membership, error) {
	if err := f.roleErr[user]; err != nil {
		return nil, err
	}
	role := f.roles[user]
	if role == "" {
		role = "member"
	}
	return &gh.Membership{Role: gh.Ptr(role), State: gh.Ptr("active")}, nil
}

func (f *fakeAPI) ListDependabotAlerts(_ context.Context, owner, name string) ([]*gh.DependabotAlert, error) {
	if err := f.alertsErr[owner+"/"+name]; err != nil {
		return nil, err
	}
	return f.dependabot[owner+"/"+name], nil
}

func (f *fakeAPI) ListSecretScanningAlerts(_ context.Context, owner, name string) ([]*gh.SecretScanningAlert, error) {
	if err := f.alertsErr[owner+"/"+name]; err != nil {
		return nil, err
	}
	return f.secrets[owner+"/"+name], nil
}

func fakeProvider(api *fakeAPI) *Provider {
	return New(WithClientFactory(func(context.Context, *Config) (API, error) { return api, nil }))
}
