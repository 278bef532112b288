package domain

import (
	"context"
	"encoding/json"
	"strings"
)

// Call-site defaults for SearchQuery.Limit.
const (
	SingleResultLimit = 1
	ListingLimit      = 5
)

// AgentRecord is one directory match. ProfileURL is derived by the client
// from its base URL and is never decoded from the wire.
type AgentRecord struct {
	Name              string   `json:"name"`
	Slug              string   `json:"slug"`
	Category          string   `json:"category,omitempty"`
	Protocols         []string `json:"protocols,omitempty"`
	ProfileURL        string   `json:"profile_url"`
	Description       string   `json:"description,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	Rating            *float64 `json:"rating,omitempty"`
	ReviewCount       int      `json:"review_count,omitempty"`
	ConnectEnabled    bool     `json:"connect_enabled"`
	PlaygroundEnabled bool     `json:"playground_enabled"`
}

// ProfileURL joins a directory base URL and an agent slug.
func ProfileURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/agents/" + slug
}

type SearchQuery struct {
	Capability     string
	Limit          int
	DiscovererSlug string
	Category       string
	Skills         []string
	Protocols      []string
	// Sort is one of relevance, rating, newest, name. Empty leaves the
	// directory default.
	Sort string
	Page int
}

// SearchMeta is the pagination block the directory attaches to search results.
type SearchMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type SearchResult struct {
	Agents []AgentRecord `json:"agents"`
	Meta   *SearchMeta   `json:"meta,omitempty"`
}

// ConnectRequest describes a single delivery to a target agent.
// Body is opaque and forwarded verbatim; a json.RawMessage is embedded as-is.
type ConnectRequest struct {
	FromSlug   string
	ToSlug     string
	Body       any
	APIKey     string
	EndpointID string
}

// Discoverer looks agents up by capability.
type Discoverer interface {
	Search(ctx context.Context, q SearchQuery) ([]AgentRecord, error)
}

// Connector delivers a body to a discovered agent.
type Connector interface {
	Connect(ctx context.Context, req ConnectRequest) (json.RawMessage, error)
}

// DiscoveryClient is the capability set every framework adapter consumes.
type DiscoveryClient interface {
	Discoverer
	Connector
}

// DirectoryBrowser exposes the directory's read-only catalogue endpoints.
type DirectoryBrowser interface {
	GetAgent(ctx context.Context, slug string) (json.RawMessage, error)
	ListCategories(ctx context.Context) ([]string, error)
}
