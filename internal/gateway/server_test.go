package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardlore/cardlore/internal/graph"
	"github.com/cardlore/cardlore/internal/observability"
	"github.com/cardlore/cardlore/internal/types"
)

func testConfig() Config {
	return Config{
		Address:      "127.0.0.1:0",
		Path:         "/graphql",
		CORSOrigins:  []string{"http://localhost:3000"},
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		MetricsPath:  "/metrics",
	}
}

func newTestServer(t *testing.T, cfg Config, opts ...ServerOption) (*Server, *MockDispatcher) {
	t.Helper()
	executor, dispatcher := newTestExecutor(t)
	server, err := NewServer(cfg, executor, opts...)
	require.NoError(t, err)
	require.NoError(t, server.Setup())
	return server, dispatcher
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func postQuery(query string) *http.Request {
	body, _ := json.Marshal(Request{Query: query})
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no address", mutate: func(c *Config) { c.Address = "" }, wantErr: true},
		{name: "relative path", mutate: func(c *Config) { c.Path = "graphql" }, wantErr: true},
		{name: "path on health route", mutate: func(c *Config) { c.Path = "/health" }, wantErr: true},
		{name: "metrics on graphql path", mutate: func(c *Config) { c.MetricsPath = "/graphql" }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimit = -1 }, wantErr: true},
		{name: "playground on graphql path", mutate: func(c *Config) { c.Playground = true; c.Path = "/" }, wantErr: true},
		{name: "root path without playground", mutate: func(c *Config) { c.Path = "/" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewServer_RequiresExecutor(t *testing.T) {
	_, err := NewServer(testConfig(), nil)
	assert.Error(t, err)
}

func TestServer_PostQuery(t *testing.T) {
	server, dispatcher := newTestServer(t, testConfig())
	dispatcher.On("Dispatch", mock.Anything, "get-set", map[string]any{"code": "LEA"}).Return(alphaSet(), nil)

	rec := serve(server, postQuery(`{ set(code: "LEA") { code name } }`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"set":{"code":"LEA","name":"Limited Edition Alpha"}}}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
}

func TestServer_GetQuery(t *testing.T) {
	server, dispatcher := newTestServer(t, testConfig())
	dispatcher.On("Dispatch", mock.Anything, "get-set", map[string]any{"code": "LEA"}).Return(alphaSet(), nil)

	params := url.Values{}
	params.Set("query", `query($code: String!) { set(code: $code) { code } }`)
	params.Set("variables", `{"code":"LEA"}`)
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil)
	req.Header.Set(RequestIDHeader, "req-123")

	rec := serve(server, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"set":{"code":"LEA"}}}`, rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestServer_GraphQLContentType(t *testing.T) {
	server, dispatcher := newTestServer(t, testConfig())
	dispatcher.On("Dispatch", mock.Anything, "get-card", map[string]any{"uuid": "u1"}).Return(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ cardSet(uuid: "u1") { name } }`))
	req.Header.Set("Content-Type", "application/graphql")

	rec := serve(server, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"cardSet":null}}`, rec.Body.String())
}

func TestServer_BadRequests(t *testing.T) {
	server, _ := newTestServer(t, testConfig())

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(server, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeResponse(t, rec)
		assert.NotContains(t, body, "data")
	})

	t.Run("malformed variables", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/graphql?query=%7B__typename%7D&variables=%5B", nil)
		rec := serve(server, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("syntax error", func(t *testing.T) {
		rec := serve(server, postQuery(`{ set(`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errs := decodeResponse(t, rec)["errors"].([]any)
		ext := errs[0].(map[string]any)["extensions"].(map[string]any)
		assert.Equal(t, CodeParseFailed, ext["code"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/graphql", nil)
		rec := serve(server, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
	})
}

func TestServer_FieldErrorIsStillOK(t *testing.T) {
	server, dispatcher := newTestServer(t, testConfig())
	dispatcher.On("Dispatch", mock.Anything, "get-set", mock.Anything).
		Return(nil, types.NewNotFoundError("SET_NOT_FOUND", "Set with code XXX not found"))

	rec := serve(server, postQuery(`{ set(code: "XXX") { name } }`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"data": {"set": null},
		"errors": [{
			"message": "Set with code XXX not found",
			"path": ["set"],
			"extensions": {"code": "NOT_FOUND", "operation": "get-set"}
		}]
	}`, rec.Body.String())
}

func TestServer_Health(t *testing.T) {
	client := graph.NewMockClient()
	server, _ := newTestServer(t, testConfig(), WithHealthChecker(client))

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decodeResponse(t, rec)["status"])

	require.NoError(t, client.Connect(context.Background()))
	rec = serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeResponse(t, rec)["status"])
}

func TestServer_HealthWithoutChecker(t *testing.T) {
	server, _ := newTestServer(t, testConfig())

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	server, _ := newTestServer(t, testConfig())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := serve(server, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := serve(server, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin allows credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := serve(server, req)

		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard answers without credentials", func(t *testing.T) {
		cfg := testConfig()
		cfg.CORSOrigins = []string{"*"}
		wildcard, _ := newTestServer(t, cfg)

		req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		rec := serve(wildcard, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("listed origin wins over wildcard", func(t *testing.T) {
		cfg := testConfig()
		cfg.CORSOrigins = []string{"*", "http://localhost:3000"}
		mixed, _ := newTestServer(t, cfg)

		req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := serve(mixed, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 1
	server, _ := newTestServer(t, cfg)

	first := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))
	second := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/health", nil)
	other.RemoteAddr = "10.0.0.2:4242"
	assert.Equal(t, http.StatusOK, serve(server, other).Code, "limits are per client")
}

func TestServer_Metrics(t *testing.T) {
	metrics, err := observability.NewMetrics()
	require.NoError(t, err)
	server, _ := newTestServer(t, testConfig(), WithMetrics(metrics, metrics.Handler()))

	serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))
	serve(server, httptest.NewRequest(http.MethodGet, "/unknown/path", nil))
	rec := serve(server, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `cardlore_http_requests_total{code="200",path="/health"} 1`)
	assert.Contains(t, body, `cardlore_http_requests_total{code="404",path="other"} 1`)
}

func TestServer_StartStop(t *testing.T) {
	server, _ := newTestServer(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx, ready)
	}()

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}
	require.True(t, server.IsRunning())

	resp, err := http.Get("http://" + server.Addr().String() + "/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Error(t, server.Start(ctx, nil), "second start must fail")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, server.IsRunning())
	assert.NoError(t, server.Stop(time.Second))
}

func TestServer_Playground(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		server, _ := newTestServer(t, testConfig())
		rec := serve(server, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Playground = true
		server, _ := newTestServer(t, cfg)

		rec := serve(server, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

		rec = serve(server, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
