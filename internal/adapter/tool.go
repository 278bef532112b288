package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/agentlink/internal/domain"
)

const (
	DiscoveryToolName = "agentlink_discovery"

	discoveryToolDescription = "Discover AI agents by capability from AgentLink. " +
		"Input should be a natural-language task description."
)

var discoveryToolParameters = json.RawMessage(`{
  "type": "object",
  "properties": {
    "capability": {
      "type": "string",
      "description": "Natural-language description of the capability or task"
    }
  },
  "required": ["capability"]
}`)

// ToolSchema describes a tool for LLM function calling.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolAgent is the slim listing a discovery tool hands back to a model.
type ToolAgent struct {
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	Category   string   `json:"category"`
	Protocols  []string `json:"protocols"`
	ProfileURL string   `json:"profile_url"`
}

// DiscoveryTool exposes directory search as a function-calling tool.
type DiscoveryTool struct {
	client domain.Discoverer
}

func NewDiscoveryTool(client domain.Discoverer) *DiscoveryTool {
	return &DiscoveryTool{client: client}
}

func (t *DiscoveryTool) Name() string { return DiscoveryToolName }

func (t *DiscoveryTool) Description() string { return discoveryToolDescription }

func (t *DiscoveryTool) Schema() ToolSchema {
	return ToolSchema{
		Name:        DiscoveryToolName,
		Description: discoveryToolDescription,
		Parameters:  discoveryToolParameters,
	}
}

// Discover returns up to five agents for capability. No discoverer slug is sent.
func (t *DiscoveryTool) Discover(ctx context.Context, capability string) ([]domain.AgentRecord, error) {
	return t.client.Search(ctx, domain.SearchQuery{
		Capability: capability,
		Limit:      domain.ListingLimit,
	})
}

// Run takes a free-text task description and returns a JSON array of
// matching agents. An empty match is "[]".
func (t *DiscoveryTool) Run(ctx context.Context, input string) (string, error) {
	agents, err := t.Discover(ctx, strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("%s: %w", DiscoveryToolName, err)
	}

	out, err := json.Marshal(toolAgents(agents))
	if err != nil {
		return "", fmt.Errorf("%s: encode result: %w", DiscoveryToolName, err)
	}
	return string(out), nil
}

// Execute accepts model-supplied arguments, either {"capability": ...} or
// {"input": ...}.
func (t *DiscoveryTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	capability, _ := params["capability"].(string)
	if capability == "" {
		capability, _ = params["input"].(string)
	}
	if strings.TrimSpace(capability) == "" {
		return nil, fmt.Errorf("%s: capability is required: %w", DiscoveryToolName, domain.ErrInvalidArgument)
	}

	agents, err := t.Discover(ctx, strings.TrimSpace(capability))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DiscoveryToolName, err)
	}
	return toolAgents(agents), nil
}

func toolAgents(agents []domain.AgentRecord) []ToolAgent {
	out := make([]ToolAgent, 0, len(agents))
	for _, a := range agents {
		protocols := a.Protocols
		if protocols == nil {
			protocols = []string{}
		}
		out = append(out, ToolAgent{
			Name:       a.Name,
			Slug:       a.Slug,
			Category:   a.Category,
			Protocols:  protocols,
			ProfileURL: a.ProfileURL,
		})
	}
	return out
}

// IsToolInputError reports whether err came from bad tool arguments rather
// than the directory.
func IsToolInputError(err error) bool {
	return errors.Is(err, domain.ErrInvalidArgument)
}
