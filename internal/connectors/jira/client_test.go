package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClientWithHTTPClient(srv.Client(), &Config{
		AuthMethod:  AuthAPIToken,
		Email:       "bot@acme.com",
		APIToken:    "ATATT",
		InstanceURL: srv.URL,
	})
	require.NoError(t, err)
	return c
}

func TestClient_ListProjectsPaginates(t *testing.T) {
	var starts []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/3/project/search", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bot@acme.com", user)
		assert.Equal(t, "ATATT", pass)

		start := r.URL.Query().Get("startAt")
		starts = append(starts, start)
		w.Header().Set("Content-Type", "application/json")
		if start == "0" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": []map[string]any{{"id": "1", "key": "OPS", "name": "Operations"}},
				"isLast": false,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"values": []map[string]any{{"id": "2", "key": "SEC", "name": "Security"}},
			"isLast": true,
		})
	}))

	projects, err := c.ListProjects(context.Background())

	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "OPS", projects[0].Key)
	assert.Equal(t, "SEC", projects[1].Key)
	assert.Equal(t, []string{"0", "1"}, starts)
}

func TestClient_UnauthorizedClassified(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorMessages":["Client must be authenticated"]}`))
	}))

	_, err := c.Myself(context.Background())

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}
