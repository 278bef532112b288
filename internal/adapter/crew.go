package adapter

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/agentlink/internal/domain"
)

// CrewRole names a seat in a crew and the capability that fills it.
type CrewRole struct {
	Role       string
	Capability string
}

type CrewMember struct {
	Role  string             `json:"role"`
	Agent domain.AgentRecord `json:"agent"`
}

// CrewAssembler fills crew roles with the best directory match for each.
type CrewAssembler struct {
	client         domain.Discoverer
	discovererSlug string
}

func NewCrewAssembler(client domain.Discoverer, discovererSlug string) *CrewAssembler {
	return &CrewAssembler{client: client, discovererSlug: discovererSlug}
}

// Assemble resolves roles in order. It stops at the first role with no match
// and returns a *domain.NotFoundError for its capability.
func (c *CrewAssembler) Assemble(ctx context.Context, roles []CrewRole) ([]CrewMember, error) {
	crew := make([]CrewMember, 0, len(roles))
	for _, role := range roles {
		agent, err := discoverFirst(ctx, c.client, role.Capability, c.discovererSlug)
		if err != nil {
			return nil, fmt.Errorf("assemble role %q: %w", role.Role, err)
		}
		crew = append(crew, CrewMember{Role: role.Role, Agent: *agent})
	}
	return crew, nil
}

// discoverFirst is the limit-1 lookup shared by the single-agent adapters.
func discoverFirst(ctx context.Context, client domain.Discoverer, capability, discovererSlug string) (*domain.AgentRecord, error) {
	agents, err := client.Search(ctx, domain.SearchQuery{
		Capability:     capability,
		Limit:          domain.SingleResultLimit,
		DiscovererSlug: discovererSlug,
	})
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, &domain.NotFoundError{Capability: capability}
	}
	return &agents[0], nil
}
