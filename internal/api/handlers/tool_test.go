package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Harshitk-cp/agentlink/internal/adapter"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
	out  string
}

func (s stubTool) Name() string { return s.name }

func (s stubTool) Schema() adapter.ToolSchema {
	return adapter.ToolSchema{Name: s.name, Description: s.name + " tool", Parameters: json.RawMessage(`{}`)}
}

func (s stubTool) Run(ctx context.Context, input string) (string, error) {
	return s.out, nil
}

func listToolNames(t *testing.T, h *ToolHandler) []string {
	t.Helper()

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/v1/tools", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []adapter.ToolSchema `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	names := make([]string, len(body.Data))
	for i, s := range body.Data {
		names[i] = s.Name
	}
	return names
}

func TestToolHandler_ListIsSortedByName(t *testing.T) {
	h := NewToolHandler(
		stubTool{name: "zeta"},
		stubTool{name: "alpha"},
		stubTool{name: "mid"},
		stubTool{name: "beta"},
	)

	for i := 0; i < 10; i++ {
		assert.Equal(t, []string{"alpha", "beta", "mid", "zeta"}, listToolNames(t, h))
	}
}

func TestToolHandler_DuplicateNameReplaces(t *testing.T) {
	h := NewToolHandler(stubTool{name: "echo", out: `"first"`}, stubTool{name: "echo", out: `"second"`})
	assert.Equal(t, []string{"echo"}, listToolNames(t, h))

	r := chi.NewRouter()
	r.Post("/v1/tools/{name}", h.Run)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/tools/echo", strings.NewReader(`{"input":"hi"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":"second"}`, rec.Body.String())
}

func TestToolHandler_EmptyList(t *testing.T) {
	assert.Empty(t, listToolNames(t, NewToolHandler()))
}
