package adapter

import (
	"context"
	"encoding/json"

	"github.com/Harshitk-cp/agentlink/internal/domain"
)

// DiscoveredAgent is a remote agent found in the directory that can be
// messaged as if it were a local participant.
type DiscoveredAgent struct {
	client   domain.DiscoveryClient
	fromSlug string
	record   domain.AgentRecord
}

// Discover binds a DiscoveredAgent to the first match for capability.
// discovererSlug is both the search attribution and the caller identity on
// later Invoke calls.
func Discover(ctx context.Context, client domain.DiscoveryClient, capability, discovererSlug string) (*DiscoveredAgent, error) {
	agent, err := discoverFirst(ctx, client, capability, discovererSlug)
	if err != nil {
		return nil, err
	}
	return &DiscoveredAgent{
		client:   client,
		fromSlug: discovererSlug,
		record:   *agent,
	}, nil
}

func (a *DiscoveredAgent) Name() string { return a.record.Name }

func (a *DiscoveredAgent) Slug() string { return a.record.Slug }

func (a *DiscoveredAgent) Record() domain.AgentRecord { return a.record }

// Invoke forwards body to the bound agent and returns the directory's
// response verbatim.
func (a *DiscoveredAgent) Invoke(ctx context.Context, body any, apiKey string) (json.RawMessage, error) {
	return a.client.Connect(ctx, domain.ConnectRequest{
		FromSlug: a.fromSlug,
		ToSlug:   a.record.Slug,
		Body:     body,
		APIKey:   apiKey,
	})
}
