package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type item struct {
	ID string `json:"id"`
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithRetry(0, time.Millisecond, time.Millisecond), WithRateLimit(1000, 100)}, opts...)
	c, err := New(srv.URL+"/api/v1", opts...)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New("not a url")

	assert.Error(t, err)
}

func TestClient_GetJSON(t *testing.T) {
	t.Run("decodes body and sends header auth", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/users/me", r.URL.Path)
			assert.Equal(t, "SSWS secret", r.Header.Get("Authorization"))
			assert.Equal(t, "ACTIVE", r.URL.Query().Get("status"))
			fmt.Fprint(w, `{"id":"00u1"}`)
		}))
		defer srv.Close()

		c := newTestClient(t, srv, WithHeader("Authorization", "SSWS secret"))
		var got item
		err := c.GetJSON(context.Background(), "/users/me", url.Values{"status": {"ACTIVE"}}, &got)

		require.NoError(t, err)
		assert.Equal(t, "00u1", got.ID)
	})

	t.Run("sends bearer token from token source", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"id":"me"}`)
		}))
		defer srv.Close()

		c := newTestClient(t, srv, WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})))
		var got item

		require.NoError(t, c.GetJSON(context.Background(), "me", nil, &got))
		assert.Equal(t, "me", got.ID)
	})

	t.Run("classifies error responses", func(t *testing.T) {
		tests := []struct {
			status int
			check  func(error) bool
		}{
			{http.StatusNotFound, IsNotFound},
			{http.StatusUnauthorized, IsUnauthorized},
			{http.StatusForbidden, IsForbidden},
			{http.StatusTooManyRequests, IsRateLimited},
		}
		for _, tt := range tests {
			t.Run(http.StatusText(tt.status), func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.status)
					fmt.Fprint(w, `{"errorSummary":"nope"}`)
				}))
				defer srv.Close()

				c := newTestClient(t, srv)
				err := c.GetJSON(context.Background(), "x", nil, nil)

				require.Error(t, err)
				assert.True(t, tt.check(err), "unexpected classification for %v", err)
			})
		}
	})

	t.Run("api error keeps body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "upstream exploded")
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		err := c.GetJSON(context.Background(), "x", nil, nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 500, apiErr.StatusCode)
		assert.Equal(t, "upstream exploded", apiErr.Message)
	})
}

func TestListLinked(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/users?after=2>; rel="next", <%s/api/v1/users>; rel="self"`, srv.URL, srv.URL))
			fmt.Fprint(w, `[{"id":"1"},{"id":"2"}]`)
			return
		}
		fmt.Fprint(w, `[{"id":"3"}]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	t.Run("follows next links", func(t *testing.T) {
		got, err := ListLinked[item](context.Background(), c, "users", nil, 0)

		require.NoError(t, err)
		assert.Equal(t, []item{{"1"}, {"2"}, {"3"}}, got)
	})

	t.Run("stops at limit", func(t *testing.T) {
		got, err := ListLinked[item](context.Background(), c, "users", nil, 2)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestListLinked_StopsOnEmptyPage(t *testing.T) {
	calls := 0
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/logs?after=%d>; rel="next"`, srv.URL, calls))
		if calls == 1 {
			fmt.Fprint(w, `[{"id":"1"}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	got, err := ListLinked[item](context.Background(), newTestClient(t, srv), "logs", nil, 0)

	require.NoError(t, err)
	assert.Equal(t, []item{{"1"}}, got)
	assert.Equal(t, 2, calls)
}

func TestListOData(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("$skiptoken") == "" {
			fmt.Fprintf(w, `{"value":[{"id":"a"}],"@odata.nextLink":"%s/api/v1/users?$skiptoken=x"}`, srv.URL)
			return
		}
		fmt.Fprint(w, `{"value":[{"id":"b"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	got, err := ListOData[item](context.Background(), c, "users", nil, 0)

	require.NoError(t, err)
	assert.Equal(t, []item{{"a"}, {"b"}}, got)
}

func TestPagination_RefusesForeignHosts(t *testing.T) {
	foreignHits := 0
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignHits++
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `[{"id":"stolen"}]`)
	}))
	defer foreign.Close()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/users" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/users?after=2>; rel="next"`, foreign.URL))
			fmt.Fprint(w, `[{"id":"1"}]`)
			return
		}
		fmt.Fprintf(w, `{"value":[{"id":"a"}],"@odata.nextLink":"%s/v1.0/users?$skiptoken=x"}`, foreign.URL)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithHeader("Authorization", "SSWS secret-token"))

	t.Run("link header", func(t *testing.T) {
		got, err := ListLinked[item](context.Background(), c, "users", nil, 0)

		require.ErrorIs(t, err, ErrForeignURL)
		assert.Nil(t, got)
	})

	t.Run("odata next link", func(t *testing.T) {
		got, err := ListOData[item](context.Background(), c, "groups", nil, 0)

		require.ErrorIs(t, err, ErrForeignURL)
		assert.Nil(t, got)
	})

	t.Run("different scheme on same host", func(t *testing.T) {
		_, err := c.GetPage(context.Background(), "ftp"+srv.URL[len("http"):]+"/api/v1/users", nil)

		require.ErrorIs(t, err, ErrForeignURL)
	})

	assert.Zero(t, foreignHits)
}

func TestParseNextLink(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"empty", "", ""},
		{"next only", `<https://x/api?page=2>; rel="next"`, "https://x/api?page=2"},
		{"self and next", `<https://x/a>; rel="self", <https://x/b>; rel="next"`, "https://x/b"},
		{"no next", `<https://x/a>; rel="self"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseNextLink(tt.header))
		})
	}
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	assert.Equal(t, -1, rl.Remaining())

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("X-Rate-Limit-Remaining", "42")
	resp.Header.Set("X-Rate-Limit-Reset", "1700000000")
	rl.UpdateFromResponse(resp)

	assert.Equal(t, 42, rl.Remaining())
	assert.Equal(t, time.Unix(1700000000, 0), rl.ResetTime())
}

func TestRateLimiter_WaitRespectsContext(t *testing.T) {
	rl := NewRateLimiter(1000, 10)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("X-RateLimit-Remaining", "0")
	resp.Header.Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
	rl.UpdateFromResponse(resp)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
}

func TestNewHTTPClient_RetriesAndAuthenticates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hc := NewHTTPClient(
		WithRetry(2, time.Millisecond, time.Millisecond),
		WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})),
	)
	resp, err := hc.Get(srv.URL)

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, calls)
}
