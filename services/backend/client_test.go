package backendsvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
)

func newTestClient(t *testing.T, h http.HandlerFunc, timeout ...time.Duration) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	conf := &core.Config{Backend: core.BackendConfig{BaseURL: srv.URL}}
	if len(timeout) > 0 {
		conf.Backend.Timeout = timeout[0]
	}
	return NewClient(conf)
}

func TestClient_Do(t *testing.T) {
	var got *http.Request
	var gotBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"success":true,"token":"abc"}`))
	})

	var out struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	err := c.Do(context.Background(), "tok", gateway.Request{
		Method: http.MethodPost,
		Path:   "/signin/signin",
		Query:  url.Values{"b": {"2"}, "a": {"1"}},
		Body:   map[string]string{"email": "a@b.io"},
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "abc", out.Token)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/signin/signin", got.URL.Path)
	assert.Equal(t, "a=1&b=2", got.URL.RawQuery)
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"email":"a@b.io"}`, string(gotBody))
}

func TestClient_Do_Anonymous(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})
	var out map[string]interface{}
	require.NoError(t, c.Do(context.Background(), "", gateway.Request{Path: "/users/get-me"}, &out))
	assert.Empty(t, auth)
	assert.Nil(t, out)
}

func TestClient_Do_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMsg     string
		wantFields  map[string]string
	}{
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"success":false,"message":"Invalid token"}`,
			wantMsg: "Invalid token",
		},
		{
			name:       "field map",
			status:     http.StatusBadRequest,
			body:       `{"error":"Validation failed","errors":{"title":"Title is required","due_date":["Invalid date"]}}`,
			wantMsg:    "Validation failed",
			wantFields: map[string]string{"title": "Title is required", "due_date": "Invalid date"},
		},
		{
			name:       "issue list",
			status:     http.StatusUnprocessableEntity,
			body:       `{"errors":[{"path":"email","msg":"Email already used"},{"field":"email","message":"dup"}]}`,
			wantFields: map[string]string{"email": "Email already used"},
		},
		{
			name:    "plain text",
			status:  http.StatusConflict,
			body:    "already exists",
			wantMsg: "already exists",
		},
		{
			name:        "html page",
			status:      http.StatusBadGateway,
			contentType: "text/html; charset=utf-8",
			body:        "<html>bad gateway</html>",
		},
		{
			name:   "empty",
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.contentType != "" {
					w.Header().Set("Content-Type", tc.contentType)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			err := c.Do(context.Background(), "tok", gateway.Request{Path: "/x"}, nil)
			require.Error(t, err)

			gErr := gateway.AsError(err)
			assert.Equal(t, tc.status, gErr.Status)
			assert.Equal(t, tc.wantMsg, gErr.Message)
			assert.Equal(t, tc.wantFields, gErr.Fields)
			assert.Equal(t, tc.status == http.StatusUnauthorized, gateway.IsUnauthorized(err))
		})
	}
}

func TestClient_Do_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":`))
	})
	var out json.RawMessage
	err := c.Do(context.Background(), "tok", gateway.Request{Path: "/x"}, &out)
	require.Error(t, err)
	assert.Equal(t, "malformed response", gateway.AsError(err).Message)
}

func TestClient_Do_Unreachable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}, 20*time.Millisecond)

	err := c.Do(context.Background(), "tok", gateway.Request{Path: "/x"}, nil)
	require.Error(t, err)
	gErr := gateway.AsError(err)
	assert.Equal(t, 0, gErr.Status)
	assert.Equal(t, "backend unreachable", gErr.Message)
}
