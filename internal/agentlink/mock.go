package agentlink

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Harshitk-cp/agentlink/internal/domain"
)

// MockClient is a configurable discovery client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	// SearchResponses is keyed by capability; unknown capabilities match nothing.
	SearchResponses map[string][]domain.AgentRecord
	SearchError     error
	ConnectResponse json.RawMessage
	ConnectError    error

	mu           sync.Mutex
	SearchCalls  []domain.SearchQuery
	ConnectCalls []domain.ConnectRequest
}

func NewMockClient() *MockClient {
	return &MockClient{
		SearchResponses: map[string][]domain.AgentRecord{},
		ConnectResponse: json.RawMessage(`{"data":{"status":200}}`),
	}
}

func (m *MockClient) Search(ctx context.Context, q domain.SearchQuery) ([]domain.AgentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SearchCalls = append(m.SearchCalls, q)
	if m.SearchError != nil {
		return nil, m.SearchError
	}

	agents := m.SearchResponses[q.Capability]
	if q.Limit > 0 && len(agents) > q.Limit {
		agents = agents[:q.Limit]
	}
	out := make([]domain.AgentRecord, len(agents))
	copy(out, agents)
	return out, nil
}

func (m *MockClient) Connect(ctx context.Context, req domain.ConnectRequest) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ConnectCalls = append(m.ConnectCalls, req)
	if m.ConnectError != nil {
		return nil, m.ConnectError
	}
	return m.ConnectResponse, nil
}

// Calls returns copies of the recorded calls.
func (m *MockClient) Calls() ([]domain.SearchQuery, []domain.ConnectRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()

	searches := append([]domain.SearchQuery(nil), m.SearchCalls...)
	connects := append([]domain.ConnectRequest(nil), m.ConnectCalls...)
	return searches, connects
}
