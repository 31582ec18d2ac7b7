package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ryhazerus/likes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc, err := likes.New(likes.WithSalt("pepper"), likes.WithRegisterer(reg))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	srv := httptest.NewServer(NewRouter(svc, RouterConfig{Gatherer: reg}))
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url, body, forwardedFor string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestLikesFlow(t *testing.T) {
	srv := newTestServer(t)
	const ip = "203.0.113.7"

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/likes", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"likes": 0.0}, body)

	resp, body = doRequest(t, http.MethodGet, srv.URL+"/api/likes/post-1", "", ip)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"likes": 0.0, "currentUserLikes": 0.0}, body)

	resp, body = doRequest(t, http.MethodPatch, srv.URL+"/api/likes/post-1", `{"value": 2}`, ip)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"likes": 2.0}, body)

	resp, body = doRequest(t, http.MethodGet, srv.URL+"/api/likes/post-1", "", ip)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"likes": 2.0, "currentUserLikes": 2.0}, body)

	resp, body = doRequest(t, http.MethodPatch, srv.URL+"/api/likes/post-1", `{"value": 2}`, ip)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "RateLimitExceeded", body["error"])

	// A different client has its own allowance.
	resp, body = doRequest(t, http.MethodGet, srv.URL+"/api/likes/post-1", "", "198.51.100.4")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"likes": 2.0, "currentUserLikes": 0.0}, body)

	resp, body = doRequest(t, http.MethodGet, srv.URL+"/api/likes", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"likes": 2.0}, body)
}

func TestApplyLikeValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"value":`},
		{"missing value", `{}`},
		{"fractional value", `{"value": 1.5}`},
		{"zero", `{"value": 0}`},
		{"above cap", `{"value": 4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, http.MethodPatch, srv.URL+"/api/likes/post-1", tt.body, "")
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "InvalidRequest", body["error"])
		})
	}

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/likes", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"likes": 0.0}, body)
}

// stubService returns fixed errors.
type stubService struct{ err error }

func (s stubService) GetAggregate(context.Context) (int64, error) { return 0, s.err }
func (s stubService) GetForItem(context.Context, string, string) (likes.ItemLikes, error) {
	return likes.ItemLikes{}, s.err
}
func (s stubService) ApplyLike(context.Context, string, string, int64) (int64, error) {
	return 0, s.err
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: dial tcp", likes.ErrStoreUnavailable), http.StatusServiceUnavailable, "StoreUnavailable"},
		{fmt.Errorf("%w: %w: deadline", likes.ErrUnknownOutcome, likes.ErrStoreUnavailable), http.StatusGatewayTimeout, "UnknownOutcome"},
		{&likes.LimitExceededError{ItemKey: "post-1", Current: 3, Requested: 1, Limit: 3}, http.StatusBadRequest, "RateLimitExceeded"},
		{&likes.InputError{Field: "itemKey", Reason: "must not be empty"}, http.StatusBadRequest, "InvalidRequest"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "InternalError"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			srv := httptest.NewServer(NewRouter(stubService{err: tt.err}, RouterConfig{}))
			defer srv.Close()

			resp, body := doRequest(t, http.MethodPatch, srv.URL+"/api/likes/post-1", `{"value": 1}`, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body["error"])
		})
	}
}

func TestClientAddress(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"none", nil, ""},
		{"forwarded single", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "203.0.113.7"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
		{"forwarded wins", map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.4"}, "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/likes/post-1", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientAddress(r))
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	doRequest(t, http.MethodPatch, srv.URL+"/api/likes/post-1", `{"value": 1}`, "")

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sb strings.Builder
	_, err = io.Copy(&sb, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), `likes_apply_total{result="ok"} 1`)
}
