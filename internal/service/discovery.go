package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Harshitk-cp/agentlink/internal/domain"
	"github.com/Harshitk-cp/agentlink/internal/metrics"
	"go.uber.org/zap"
)

var ErrBrowserNotConfigured = errors.New("directory browsing is not configured")

// DiscoveryOptions carries the caller identity used when a request does not
// name one itself.
type DiscoveryOptions struct {
	DiscovererSlug string
	APIKey         string
}

// DiscoveryService layers caller policy, logging and metrics over a
// discovery client. It satisfies domain.DiscoveryClient itself, so adapters
// can be handed either.
type DiscoveryService struct {
	client  domain.DiscoveryClient
	browser domain.DirectoryBrowser
	opts    DiscoveryOptions
	logger  *zap.Logger
}

func NewDiscoveryService(client domain.DiscoveryClient, opts DiscoveryOptions, logger *zap.Logger) *DiscoveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscoveryService{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// SetBrowser wires the catalogue endpoints used by GetAgent and ListCategories.
func (s *DiscoveryService) SetBrowser(b domain.DirectoryBrowser) {
	s.browser = b
}

// Search runs q, filling in the configured discoverer slug when q has none.
func (s *DiscoveryService) Search(ctx context.Context, q domain.SearchQuery) ([]domain.AgentRecord, error) {
	if q.DiscovererSlug == "" {
		q.DiscovererSlug = s.opts.DiscovererSlug
	}

	start := time.Now()
	agents, err := s.client.Search(ctx, q)
	duration := time.Since(start)
	metrics.RecordDirectoryCall("search", duration, err)

	if err != nil {
		s.logger.Warn("agent search failed",
			zap.String("capability", q.Capability),
			zap.Int("limit", q.Limit),
			zap.String("error_kind", domain.Kind(err)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RecordDiscovered("search", len(agents))
	s.logger.Debug("agent search completed",
		zap.String("capability", q.Capability),
		zap.Int("limit", q.Limit),
		zap.Int("count", len(agents)),
		zap.Duration("duration", duration),
	)
	return agents, nil
}

// Discover is a listing lookup for capability.
func (s *DiscoveryService) Discover(ctx context.Context, capability string, limit int) ([]domain.AgentRecord, error) {
	return s.Search(ctx, domain.SearchQuery{Capability: capability, Limit: limit})
}

// DiscoverOne returns the first match for capability. No match is a
// *domain.NotFoundError naming the capability.
func (s *DiscoveryService) DiscoverOne(ctx context.Context, capability string) (*domain.AgentRecord, error) {
	agents, err := s.Discover(ctx, capability, domain.SingleResultLimit)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		s.logger.Info("no agent discovered", zap.String("capability", capability))
		return nil, &domain.NotFoundError{Capability: capability}
	}

	s.logger.Info("agent discovered",
		zap.String("capability", capability),
		zap.String("slug", agents[0].Slug),
		zap.String("name", agents[0].Name),
	)
	return &agents[0], nil
}

// Connect delivers req, defaulting the caller slug and API key from the
// service options.
func (s *DiscoveryService) Connect(ctx context.Context, req domain.ConnectRequest) (json.RawMessage, error) {
	if req.FromSlug == "" {
		req.FromSlug = s.opts.DiscovererSlug
	}
	if req.APIKey == "" {
		req.APIKey = s.opts.APIKey
	}

	start := time.Now()
	resp, err := s.client.Connect(ctx, req)
	duration := time.Since(start)
	metrics.RecordDirectoryCall("connect", duration, err)

	if err != nil {
		level := s.logger.Warn
		if errors.Is(err, domain.ErrAuth) {
			level = s.logger.Error
		}
		level("agent connect failed",
			zap.String("from_slug", req.FromSlug),
			zap.String("to_slug", req.ToSlug),
			zap.String("error_kind", domain.Kind(err)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("agent connect completed",
		zap.String("from_slug", req.FromSlug),
		zap.String("to_slug", req.ToSlug),
		zap.Int("response_bytes", len(resp)),
		zap.Duration("duration", duration),
	)
	return resp, nil
}

// Invoke sends body to toSlug as the configured caller.
func (s *DiscoveryService) Invoke(ctx context.Context, toSlug string, body any) (json.RawMessage, error) {
	return s.Connect(ctx, domain.ConnectRequest{ToSlug: toSlug, Body: body})
}

func (s *DiscoveryService) GetAgent(ctx context.Context, slug string) (json.RawMessage, error) {
	if s.browser == nil {
		return nil, ErrBrowserNotConfigured
	}

	start := time.Now()
	data, err := s.browser.GetAgent(ctx, slug)
	metrics.RecordDirectoryCall("get_agent", time.Since(start), err)
	if err != nil {
		s.logger.Warn("get agent failed", zap.String("slug", slug), zap.String("error_kind", domain.Kind(err)), zap.Error(err))
		return nil, err
	}
	return data, nil
}

func (s *DiscoveryService) ListCategories(ctx context.Context) ([]string, error) {
	if s.browser == nil {
		return nil, ErrBrowserNotConfigured
	}

	start := time.Now()
	categories, err := s.browser.ListCategories(ctx)
	metrics.RecordDirectoryCall("list_categories", time.Since(start), err)
	if err != nil {
		s.logger.Warn("list categories failed", zap.String("error_kind", domain.Kind(err)), zap.Error(err))
		return nil, err
	}
	return categories, nil
}
