package azuread

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/evidence-sync/internal/connectors/httpapi"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "graph-token"})
	c, err := NewClientWithBaseURL(srv.URL+"/v1.0", httpapi.WithTokenSource(ts))
	require.NoError(t, err)
	return srv, c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_ListUsersFollowsNextLink(t *testing.T) {
	var srvURL string
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1.0/users", r.URL.Path)
		assert.Equal(t, "Bearer graph-token", r.Header.Get("Authorization"))
		if r.URL.Query().Get("$skiptoken") == "" {
			assert.Equal(t, "999", r.URL.Query().Get("$top"))
			assert.Contains(t, r.URL.Query().Get("$select"), "accountEnabled")
			writeJSON(w, map[string]any{
				"value":           []map[string]any{{"id": "u1", "userPrincipalName": "alice@acme.com", "accountEnabled": true}},
				"@odata.nextLink": srvURL + "/v1.0/users?$skiptoken=abc",
			})
			return
		}
		writeJSON(w, map[string]any{"value": []map[string]any{{"id": "u2", "userType": "Guest"}}})
	})
	srvURL = srv.URL

	users, err := c.ListUsers(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[0].AccountEnabled)
	assert.Equal(t, "Guest", users[1].UserType)
}

func TestClient_ListSignInsFilter(t *testing.T) {
	since := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1.0/auditLogs/signIns", r.URL.Path)
		assert.Equal(t, "createdDateTime ge 2026-10-01T00:00:00Z", r.URL.Query().Get("$filter"))
		assert.Equal(t, "2", r.URL.Query().Get("$top"))
		writeJSON(w, map[string]any{
			"value": []map[string]any{
				{"userPrincipalName": "a@acme.com", "status": map[string]any{"errorCode": 50126}},
				{"userPrincipalName": "b@acme.com", "status": map[string]any{"errorCode": 0}},
			},
			"@odata.nextLink": "http://unused.invalid/next",
		})
	})

	signIns, err := c.ListSignIns(context.Background(), since, 2)

	require.NoError(t, err)
	require.Len(t, signIns, 2)
	assert.Equal(t, 50126, signIns[0].Status.ErrorCode)
}

func TestClient_OrganizationForbidden(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		writeJSON(w, map[string]any{"error": map[string]any{"code": "Authorization_RequestDenied"}})
	})

	_, err := c.Organization(context.Background())

	require.Error(t, err)
	assert.True(t, IsForbidden(err))
	assert.False(t, IsUnauthorized(err))
}
