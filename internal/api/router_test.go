package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Harshitk-cp/agentlink/internal/agentlink"
	"github.com/Harshitk-cp/agentlink/internal/agentlink/agentlinktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gatewayKey = "al_live_gateway"

func setupGateway(t *testing.T) (*httptest.Server, *agentlinktest.Server) {
	t.Helper()

	dir := agentlinktest.NewServer(agentlinktest.Seed()...)
	t.Cleanup(dir.Close)

	client := agentlink.NewClient(agentlink.Config{BaseURL: dir.URL})
	app := NewApp(client, Options{
		DiscovererSlug: "gateway",
		APIKey:         gatewayKey,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}, nil)
	t.Cleanup(app.Close)

	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)
	return srv, dir
}

func doJSON(t *testing.T, method, url, body string, header map[string]string) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	srv, dir := setupGateway(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, dir.URL, body["directory"])
}

func TestStatus(t *testing.T) {
	srv, _ := setupGateway(t)

	doJSON(t, http.MethodGet, srv.URL+"/health", "", nil)
	status, body := doJSON(t, http.MethodGet, srv.URL+"/status", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.GreaterOrEqual(t, body["request_count"], float64(2))
	assert.Contains(t, body, "build")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := setupGateway(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	srv, dir := setupGateway(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/agents/search?q=security&category=Developer+Tools&skills=code-review,security", "", nil)
	require.Equal(t, http.StatusOK, status)

	data := body["data"].([]any)
	require.Len(t, data, 1)
	agent := data[0].(map[string]any)
	assert.Equal(t, "codereviewmate", agent["slug"])
	assert.Equal(t, dir.URL+"/agents/codereviewmate", agent["profile_url"])

	searches := dir.Searches()
	require.Len(t, searches, 1)
	assert.Equal(t, "5", searches[0].Get("limit"))
	assert.Equal(t, "gateway", searches[0].Get("discovererSlug"))
	assert.Equal(t, "Developer Tools", searches[0].Get("category"))
	assert.Equal(t, "code-review,security", searches[0].Get("skills"))
}

func TestSearch_EmptyResult(t *testing.T) {
	srv, _ := setupGateway(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/agents/search?q=zzzz", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["data"])
}

func TestSearch_Validation(t *testing.T) {
	srv, dir := setupGateway(t)

	for _, q := range []string{"", "?q=", "?q=x&limit=0", "?q=x&limit=21", "?q=x&limit=abc", "?q=x&page=-1"} {
		status, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/agents/search"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, status, q)
	}
	assert.Empty(t, dir.Searches())
}

func TestSearch_DirectoryFailure(t *testing.T) {
	srv, dir := setupGateway(t)
	dir.FailSearch(http.StatusServiceUnavailable)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/agents/search?q=security", "", nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "transport", body["kind"])
}

func TestDiscover(t *testing.T) {
	srv, dir := setupGateway(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/agents/discover?q=security", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "codereviewmate", body["data"].(map[string]any)["slug"])
	assert.Equal(t, "1", dir.Searches()[0].Get("limit"))

	status, body = doJSON(t, http.MethodGet, srv.URL+"/v1/agents/discover?q=zzzz", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["kind"])
	assert.Equal(t, "no agent discovered for capability: zzzz", body["error"])
}

func TestCategories(t *testing.T) {
	srv, dir := setupGateway(t)
	dir.SetCategories([]string{"Research", "Support"})

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/agents/categories", "", nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, []any{"Research", "Support"}, data["categories"])
	assert.EqualValues(t, 2, data["count"])
}

func TestGetAgent(t *testing.T) {
	srv, _ := setupGateway(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/agents/scout", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Scout", body["data"].(map[string]any)["name"])

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/agents/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestConnect_UsesGatewayKey(t *testing.T) {
	srv, dir := setupGateway(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/v1/agents/codereviewmate/connect",
		`{"fromAgentSlug":"my-orchestrator","body":{"pr":42}}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 42, body["data"].(map[string]any)["response"].(map[string]any)["pr"])

	calls := dir.Connects()
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer "+gatewayKey, calls[0].Authorization)
	assert.Equal(t, "my-orchestrator", calls[0].FromAgentSlug)
	assert.JSONEq(t, `{"pr":42}`, string(calls[0].Body))
}

func TestConnect_ForwardsCallerKeyAndDefaultsSlug(t *testing.T) {
	srv, dir := setupGateway(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/agents/scout/connect",
		`{"body":"hello","endpointId":"ep_1"}`,
		map[string]string{"Authorization": "Bearer al_live_caller"})
	require.Equal(t, http.StatusOK, status)

	calls := dir.Connects()
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer al_live_caller", calls[0].Authorization)
	assert.Equal(t, "gateway", calls[0].FromAgentSlug)
	assert.Equal(t, "ep_1", calls[0].EndpointID)
	assert.JSONEq(t, `"hello"`, string(calls[0].Body))
}

func TestConnect_KeepsBodyFormatting(t *testing.T) {
	srv, dir := setupGateway(t)

	const body = "{\"task\": \"x\",\n  \"n\": 1}"
	status, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/agents/scout/connect", `{"body":`+body+`}`, nil)
	require.Equal(t, http.StatusOK, status)

	calls := dir.Connects()
	require.Len(t, calls, 1)
	assert.Equal(t, body, string(calls[0].Body))
}

func TestConnect_AuthRejected(t *testing.T) {
	srv, dir := setupGateway(t)
	dir.RequireAPIKey("al_live_only")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/v1/agents/scout/connect", `{"body":"hello"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "auth", body["kind"])
}

func TestConnect_Validation(t *testing.T) {
	srv, dir := setupGateway(t)

	for _, payload := range []string{`not json`, `{}`, `{"body":null}`} {
		status, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/agents/scout/connect", payload, nil)
		assert.Equal(t, http.StatusBadRequest, status, payload)
	}

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/agents/scout/connect", `{"body":"x"}`,
		map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, status)

	assert.Empty(t, dir.Connects())
}

func TestTools(t *testing.T) {
	srv, _ := setupGateway(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/v1/tools", "", nil)
	require.Equal(t, http.StatusOK, status)
	tools := body["data"].([]any)
	require.Len(t, tools, 1)
	assert.Equal(t, "agentlink_discovery", tools[0].(map[string]any)["name"])

	status, body = doJSON(t, http.MethodPost, srv.URL+"/v1/tools/agentlink_discovery", `{"input":"security"}`, nil)
	require.Equal(t, http.StatusOK, status)
	listed := body["data"].([]any)
	require.Len(t, listed, 1)
	assert.Equal(t, "codereviewmate", listed[0].(map[string]any)["slug"])

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/tools/unknown", `{"input":"x"}`, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/tools/agentlink_discovery", `{"input":" "}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := setupGateway(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
