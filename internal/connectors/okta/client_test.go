package okta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidence-sync/internal/connectors/httpapi"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return clientFor(t, srv)
}

func clientFor(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClientWithBaseURL(srv.URL+"/api/v1", httpapi.WithHeader("Authorization", "SSWS 00abc"))
	require.NoError(t, err)
	return c
}

func TestClient_ListUsersFollowsLinks(t *testing.T) {
	srv := httptest.NewUnstartedServer(nil)
	srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users", r.URL.Path)
		assert.Equal(t, "SSWS 00abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("after") == "" {
			assert.Equal(t, "200", r.URL.Query().Get("limit"))
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/users?after=00u1&limit=200>; rel="next"`, srv.URL))
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": "00u1", "status": "ACTIVE"}})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": "00u2", "status": "LOCKED_OUT"}})
	})
	srv.Start()
	t.Cleanup(srv.Close)
	c := clientFor(t, srv)

	users, err := c.ListUsers(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "00u1", users[0].ID)
	assert.Equal(t, "LOCKED_OUT", users[1].Status)
}

func TestClient_ListLogEventsWindow(t *testing.T) {
	since := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/logs", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2026-10-01T00:00:00Z", q.Get("since"))
		assert.Equal(t, "2026-10-02T00:00:00Z", q.Get("until"))
		assert.Equal(t, "ASCENDING", q.Get("sortOrder"))
		assert.Equal(t, "50", q.Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"eventType": "user.session.start", "outcome": map[string]any{"result": "FAILURE"}},
		})
	}))

	events, err := c.ListLogEvents(context.Background(), since, until, 50)

	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Outcome)
	assert.Equal(t, "FAILURE", events[0].Outcome.Result)
}

func TestClient_ErrorsClassified(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorCode":"E0000011","errorSummary":"Invalid token provided"}`))
	}))

	_, err := c.CurrentUser(context.Background())

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsRateLimited(err))
}
