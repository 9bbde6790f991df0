package google

import (
	"context"
	"errors"
	"time"

	admin "google.golang.org/api/admin/directory/v1"
	reports "google.golang.org/api/admin/reports/v1"
)

var errUpstream = errors.New("upstream failure")

// fakeAPI is an in-memory API.
type fakeAPI struct {
	customer    *admin.Customer
	customerErr error
	users       []*admin.User
	usersErr    error
	groups      []*admin.Group
	groupsErr   error
	members     map[string][]*admin.Member
	membersErr  map[string]error
	activities  []*reports.Activity
	activityErr error

	since time.Time
	limit int
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) Customer(context.Context) (*admin.Customer, error) {
	return f.customer, f.customerErr
}

func (f *fakeAPI) ListUsers(context.Context, string) ([]*admin.User, error) {
	return f.users, f.usersErr
}

func (f *fakeAPI) ListGroups(context.Context, string) ([]*admin.Group, error) {
	return f.groups, f.groupsErr
}

func (f *fakeAPI) ListMembers(_ context.Context, groupKey string) ([]*admin.Member, error) {
	if err := f.membersErr[groupKey]; err != nil {
		return nil, err
	}
	return f.members[groupKey], nil
}

func (f *fakeAPI) ListLoginActivities(_ context.Context, since time.Time, limit int) ([]*reports.Activity, error) {
	f.since, f.limit = since, limit
	return f.activities, f.activityErr
}

func user(email string, opts ...func(*admin.User)) *admin.User {
	u := &admin.User{PrimaryEmail: email, IsEnrolledIn2Sv: true, Name: &admin.UserName{FullName: email}}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func without2SV(u *admin.User) { u.IsEnrolledIn2Sv = false }

func superAdmin(u *admin.User) { u.IsAdmin = true }

func suspended(u *admin.User) { u.Suspended = true }

func member(email, kind string) *admin.Member {
	return &admin.Member{Email: email, Type: kind, Role: "MEMBER"}
}

func loginActivity(actor, event string, params ...*reports.ActivityEventsParameters) *reports.Activity {
	return &reports.Activity{
		Id:        &reports.ActivityId{Time: "2026-10-01T10:00:00.000Z"},
		Actor:     &reports.ActivityActor{Email: actor},
		IpAddress: "203.0.113.7",
		Events:    []*reports.ActivityEvents{{Name: event, Parameters: params}},
	}
}

func fakeProvider(api *fakeAPI) *Provider {
	return New(WithClientFactory(func(context.Context, *Config) (API, error) { return api, nil }))
}
