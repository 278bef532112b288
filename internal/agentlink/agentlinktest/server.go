// Package agentlinktest provides an in-process AgentLink directory for tests.
package agentlinktest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Agent is a directory entry as the real search endpoint serializes it.
type Agent struct {
	Slug              string   `json:"slug"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Category          string   `json:"category,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	Protocols         []string `json:"protocols,omitempty"`
	Rating            *float64 `json:"rating"`
	ReviewCount       int      `json:"reviewCount"`
	ConnectEnabled    bool     `json:"connectEnabled"`
	PlaygroundEnabled bool     `json:"playgroundEnabled"`
}

// ConnectCall is one request received on the connect endpoint.
type ConnectCall struct {
	ToSlug        string          `json:"-"`
	Authorization string          `json:"-"`
	FromAgentSlug string          `json:"fromAgentSlug"`
	Body          json.RawMessage `json:"body"`
	EndpointID    string          `json:"endpointId"`
}

// Server is a fake directory backed by a fixed agent list.
// Search matches when any query word occurs in an agent's name, description,
// category or skills.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	apiKey       string
	agents       []Agent
	searches     []url.Values
	connects     []ConnectCall
	categories   []string
	searchStatus int
}

func NewServer(agents ...Agent) *Server {
	s := &Server{agents: agents}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/search", s.handleSearch)
	mux.HandleFunc("GET /api/v1/agents/categories", s.handleCategories)
	mux.HandleFunc("GET /api/v1/agents/{slug}", s.handleGet)
	mux.HandleFunc("POST /api/v1/agents/{slug}/connect", s.handleConnect)

	s.Server = httptest.NewServer(mux)
	return s
}

// Seed returns a small directory resembling the public AgentLink catalogue.
func Seed() []Agent {
	rating := 4.6
	return []Agent{
		{
			Slug:           "supportpilot",
			Name:           "SupportPilot",
			Description:    "AI support agent for realtime FAQ and ticket triage.",
			Category:       "Customer Support",
			Skills:         []string{"customer-support", "ticket-triage", "knowledge-base"},
			Protocols:      []string{"rest", "a2a"},
			Rating:         &rating,
			ReviewCount:    12,
			ConnectEnabled: true,
		},
		{
			Slug:           "codereviewmate",
			Name:           "CodeReviewMate",
			Description:    "Pull request review and security analysis for TypeScript and Python teams.",
			Category:       "Developer Tools",
			Skills:         []string{"code-review", "security", "test-strategy"},
			Protocols:      []string{"rest", "mcp"},
			ConnectEnabled: true,
		},
		{
			Slug:              "marketwatch-navigator",
			Name:              "MarketWatch Navigator",
			Description:       "Market insights, trend analysis and research summarization.",
			Category:          "Business Intelligence",
			Skills:            []string{"trend-analysis", "summarization", "alerts"},
			Protocols:         []string{"rest"},
			PlaygroundEnabled: true,
		},
		{
			Slug:        "scout",
			Name:        "Scout",
			Description: "Web research agent.",
			Category:    "Research",
			Skills:      []string{"web-research"},
			Protocols:   []string{"a2a"},
		},
	}
}

// RequireAPIKey makes connect accept only key as the bearer token.
func (s *Server) RequireAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// SetCategories overrides the categories listing; by default it is derived
// from the agents.
func (s *Server) SetCategories(categories []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
}

// FailSearch makes the search endpoint answer with status until reset with 0.
func (s *Server) FailSearch(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchStatus = status
}

// Searches returns the query strings received by the search endpoint.
func (s *Server) Searches() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.searches...)
}

// Connects returns the connect calls received so far.
func (s *Server) Connects() []ConnectCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ConnectCall(nil), s.connects...)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := r.URL.Query()
	s.searches = append(s.searches, query)

	if s.searchStatus != 0 {
		writeJSON(w, s.searchStatus, map[string]any{"error": map[string]string{"code": "INTERNAL_ERROR", "message": "Internal server error"}})
		return
	}

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit < 1 {
		limit = 12
	}

	words := strings.Fields(strings.ToLower(query.Get("q")))
	matches := []Agent{}
	for _, a := range s.agents {
		if len(matches) == limit {
			break
		}
		if matchesAny(a, words) {
			matches = append(matches, a)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": matches,
		"meta": map[string]int{"total": len(matches), "page": 1, "limit": limit, "totalPages": 1},
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories := s.categories
	if categories == nil {
		seen := map[string]bool{}
		categories = []string{}
		for _, a := range s.agents {
			if a.Category != "" && !seen[a.Category] {
				seen[a.Category] = true
				categories = append(categories, a.Category)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"categories": categories}})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slug := r.PathValue("slug")
	for _, a := range s.agents {
		if a.Slug == slug {
			writeJSON(w, http.StatusOK, map[string]any{"data": a})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]string{"code": "NOT_FOUND", "message": "Agent not found"}})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := ConnectCall{ToSlug: r.PathValue("slug"), Authorization: r.Header.Get("Authorization")}
	raw, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(raw, &call); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]string{"code": "VALIDATION_ERROR", "message": "Invalid request"}})
		return
	}
	s.connects = append(s.connects, call)

	if !strings.HasPrefix(call.Authorization, "Bearer ") {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"code": "UNAUTHORIZED", "message": "Authentication required"}})
		return
	}
	if s.apiKey != "" && strings.TrimPrefix(call.Authorization, "Bearer ") != s.apiKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"code": "UNAUTHORIZED", "message": "Invalid API key"}})
		return
	}

	found := false
	for _, a := range s.agents {
		if a.Slug == call.ToSlug {
			found = true
			break
		}
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]string{"code": "AGENT_NOT_FOUND", "message": "Agent not found"}})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"status":   200,
		"error":    nil,
		"response": call.Body,
	}})
}

func matchesAny(a Agent, words []string) bool {
	haystack := strings.ToLower(strings.Join(append([]string{a.Name, a.Description, a.Category}, a.Skills...), " "))
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
