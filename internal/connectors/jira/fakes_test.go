package jira

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ctreminiom/go-atlassian/v2/pkg/infra/models"
)

var errUpstream = errors.New("upstream failure")

// fakeAPI is an in-memory API.
type fakeAPI struct {
	me           *models.UserScheme
	meErr        error
	projects     []*models.ProjectScheme
	projectsErr  error
	projectCalls atomic.Int32
	issues       []*models.IssueScheme
	issuesErr    error
	users        map[string][]*models.UserScheme
	usersErr     map[string]error
	schemes      map[string]*models.PermissionSchemeScheme
	schemeErr    map[string]error

	jql   string
	limit int
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) Myself(context.Context) (*models.UserScheme, error) {
	return f.me, f.meErr
}

func (f *fakeAPI) ListProjects(context.Context) ([]*models.ProjectScheme, error) {
	f.projectCalls.Add(1)
	return f.projects, f.projectsErr
}

func (f *fakeAPI) SearchIssues(_ context.Context, jql string, limit int) ([]*models.IssueScheme, error) {
	f.jql, f.limit = jql, limit
	return f.issues, f.issuesErr
}

func (f *fakeAPI) AssignableUsers(_ context.Context, key string) ([]*models.UserScheme, error) {
	if err := f.usersErr[key]; err != nil {
		return nil, err
	}
	return f.users[key], nil
}

func (f *fakeAPI) PermissionScheme(_ context.Context, key string) (*models.PermissionSchemeScheme, error) {
	if err := f.schemeErr[key]; err != nil {
		return nil, err
	}
	if s, ok := f.schemes[key]; ok {
		return s, nil
	}
	return &models.PermissionSchemeScheme{Name: "Default Permission Scheme"}, nil
}

func project(key, name string) *models.ProjectScheme {
	return &models.ProjectScheme{ID: "100" + key, Key: key, Name: name, ProjectTypeKey: "software"}
}

func issue(key, status, category, priority string) *models.IssueScheme {
	return &models.IssueScheme{
		Key: key,
		Fields: &models.IssueFieldsScheme{
			Summary:  "Issue " + key,
			Labels:   []string{"security"},
			Status:   &models.StatusScheme{Name: status, StatusCategory: &models.StatusCategoryScheme{Key: category}},
			Priority: &models.PriorityScheme{Name: priority},
		},
	}
}

func jiraUser(id string, active bool) *models.UserScheme {
	return &models.UserScheme{AccountID: id, DisplayName: "User " + id, Active: active, AccountType: "atlassian"}
}

func grant(permission, holder, parameter string) *models.PermissionGrantScheme {
	return &models.PermissionGrantScheme{
		Permission: permission,
		Holder:     &models.PermissionGrantHolderScheme{Type: holder, Parameter: parameter},
	}
}

func fakeProvider(api *fakeAPI) *Provider {
	return New(WithClientFactory(func(context.Context, *Config) (API, error) { return api, nil }))
}
