package handlers

import (
	"cmp"
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/Harshitk-cp/agentlink/internal/adapter"
	"github.com/go-chi/chi/v5"
)

// Tool is a function-calling tool the gateway can expose.
type Tool interface {
	Name() string
	Schema() adapter.ToolSchema
	Run(ctx context.Context, input string) (string, error)
}

var _ Tool = (*adapter.DiscoveryTool)(nil)

// ToolHandler serves function-calling tools over HTTP for agents that are
// not written in Go.
type ToolHandler struct {
	ordered []Tool
	tools   map[string]Tool
}

// NewToolHandler registers tools by name; a later tool with the same name
// replaces an earlier one. List reports them sorted by name.
func NewToolHandler(tools ...Tool) *ToolHandler {
	h := &ToolHandler{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		h.tools[t.Name()] = t
	}
	for _, t := range h.tools {
		h.ordered = append(h.ordered, t)
	}
	slices.SortFunc(h.ordered, func(a, b Tool) int {
		return cmp.Compare(a.Name(), b.Name())
	})
	return h
}

func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	schemas := make([]adapter.ToolSchema, 0, len(h.ordered))
	for _, t := range h.ordered {
		schemas = append(schemas, t.Schema())
	}
	writeData(w, http.StatusOK, schemas)
}

type runToolRequest struct {
	Input string `json:"input"`
}

func (h *ToolHandler) Run(w http.ResponseWriter, r *http.Request) {
	tool, ok := h.tools[chi.URLParam(r, "name")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown tool")
		return
	}

	var req runToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	out, err := tool.Run(r.Context(), req.Input)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	writeData(w, http.StatusOK, json.RawMessage(out))
}
