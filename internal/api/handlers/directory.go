package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/agentlink/internal/api/middleware"
	"github.com/Harshitk-cp/agentlink/internal/domain"
	"github.com/Harshitk-cp/agentlink/internal/service"
	"github.com/go-chi/chi/v5"
)

const maxSearchLimit = 20

type DirectoryHandler struct {
	svc *service.DiscoveryService
}

func NewDirectoryHandler(svc *service.DiscoveryService) *DirectoryHandler {
	return &DirectoryHandler{svc: svc}
}

func (h *DirectoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	capability := strings.TrimSpace(query.Get("q"))
	if capability == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	limit := domain.ListingLimit
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > maxSearchLimit {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 20")
			return
		}
		limit = v
	}

	page := 0
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = v
	}

	agents, err := h.svc.Search(r.Context(), domain.SearchQuery{
		Capability:     capability,
		Limit:          limit,
		DiscovererSlug: query.Get("discoverer"),
		Category:       query.Get("category"),
		Skills:         splitList(query.Get("skills")),
		Protocols:      splitList(query.Get("protocols")),
		Sort:           query.Get("sort"),
		Page:           page,
	})
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	writeData(w, http.StatusOK, agents)
}

// Discover returns the single best match for q, or 404.
func (h *DirectoryHandler) Discover(w http.ResponseWriter, r *http.Request) {
	capability := strings.TrimSpace(r.URL.Query().Get("q"))
	if capability == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	agent, err := h.svc.DiscoverOne(r.Context(), capability)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	writeData(w, http.StatusOK, agent)
}

func (h *DirectoryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"categories": categories,
		"count":      len(categories),
	})
}

func (h *DirectoryHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	data, err := h.svc.GetAgent(r.Context(), slug)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	writeData(w, http.StatusOK, data)
}

type connectRequest struct {
	FromAgentSlug string          `json:"fromAgentSlug"`
	Body          json.RawMessage `json:"body"`
	EndpointID    string          `json:"endpointId,omitempty"`
}

// Connect forwards a message to {slug}. The caller's bearer key is used when
// present, otherwise the gateway's configured key.
func (h *DirectoryHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Body) == 0 || string(req.Body) == "null" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	resp, err := h.svc.Connect(r.Context(), domain.ConnectRequest{
		FromSlug:   req.FromAgentSlug,
		ToSlug:     chi.URLParam(r, "slug"),
		Body:       req.Body,
		APIKey:     middleware.CallerKeyFromContext(r.Context()),
		EndpointID: req.EndpointID,
	})
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
