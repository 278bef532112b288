package adapter

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/agentlink/internal/domain"
)

// DiscoveryNode is a workflow step that is bound to a directory agent at
// plan time.
type DiscoveryNode struct {
	Name       string
	Capability string
}

// StepAssignment is the outcome of resolving one node.
type StepAssignment struct {
	Node  string             `json:"node"`
	Slug  string             `json:"slug"`
	Agent domain.AgentRecord `json:"agent"`
}

// Resolve finds the agent for the node's capability.
func (n DiscoveryNode) Resolve(ctx context.Context, client domain.Discoverer, discovererSlug string) (StepAssignment, error) {
	agent, err := discoverFirst(ctx, client, n.Capability, discovererSlug)
	if err != nil {
		return StepAssignment{}, fmt.Errorf("node %q: %w", n.Name, err)
	}
	return StepAssignment{Node: n.Name, Slug: agent.Slug, Agent: *agent}, nil
}

// WorkflowPlan is the per-step assignment for one topic.
type WorkflowPlan struct {
	Topic string           `json:"topic"`
	Steps []StepAssignment `json:"steps"`
}

type Workflow struct {
	client         domain.Discoverer
	discovererSlug string
	nodes          []DiscoveryNode
}

func NewWorkflow(client domain.Discoverer, discovererSlug string, nodes ...DiscoveryNode) *Workflow {
	return &Workflow{
		client:         client,
		discovererSlug: discovererSlug,
		nodes:          nodes,
	}
}

// AddNode appends a step. Nodes run in insertion order.
func (w *Workflow) AddNode(name, capability string) *Workflow {
	w.nodes = append(w.nodes, DiscoveryNode{Name: name, Capability: capability})
	return w
}

func (w *Workflow) Nodes() []DiscoveryNode {
	return append([]DiscoveryNode(nil), w.nodes...)
}

// Plan resolves every node in order. A node with no match aborts the plan.
func (w *Workflow) Plan(ctx context.Context, topic string) (*WorkflowPlan, error) {
	plan := &WorkflowPlan{
		Topic: topic,
		Steps: make([]StepAssignment, 0, len(w.nodes)),
	}
	for _, node := range w.nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step, err := node.Resolve(ctx, w.client, w.discovererSlug)
		if err != nil {
			return nil, err
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, nil
}
