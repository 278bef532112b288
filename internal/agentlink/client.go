// Package agentlink is the HTTP client for the AgentLink agent directory.
package agentlink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Harshitk-cp/agentlink/internal/domain"
)

const (
	DefaultBaseURL        = "https://www.agent-l.ink"
	DefaultSearchTimeout  = 15 * time.Second
	DefaultConnectTimeout = 30 * time.Second

	searchPath     = "/api/v1/agents/search"
	categoriesPath = "/api/v1/agents/categories"
	agentsPath     = "/api/v1/agents/"

	// maxErrorBody bounds the response excerpt carried on errors.
	maxErrorBody = 300
)

// Config is passed in explicitly; the client never reads the environment.
type Config struct {
	BaseURL        string
	SearchTimeout  time.Duration
	ConnectTimeout time.Duration
	UserAgent      string
	HTTPClient     *http.Client
}

// Client holds only immutable configuration and is safe for concurrent use.
type Client struct {
	baseURL        string
	searchTimeout  time.Duration
	connectTimeout time.Duration
	userAgent      string
	httpClient     *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	searchTimeout := cfg.SearchTimeout
	if searchTimeout <= 0 {
		searchTimeout = DefaultSearchTimeout
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:        baseURL,
		searchTimeout:  searchTimeout,
		connectTimeout: connectTimeout,
		userAgent:      cfg.UserAgent,
		httpClient:     httpClient,
	}
}

// BaseURL returns the normalized directory base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// wire types for the directory API
type envelope struct {
	Data json.RawMessage    `json:"data"`
	Meta *domain.SearchMeta `json:"meta,omitempty"`
}

type rawAgent struct {
	Name              string   `json:"name"`
	Slug              string   `json:"slug"`
	Category          string   `json:"category"`
	Protocols         []string `json:"protocols"`
	Description       string   `json:"description"`
	Skills            []string `json:"skills"`
	Rating            *float64 `json:"rating"`
	ReviewCount       int      `json:"reviewCount"`
	ConnectEnabled    bool     `json:"connectEnabled"`
	PlaygroundEnabled bool     `json:"playgroundEnabled"`
}

// Search returns the agents matching q.Capability in server order, at most
// q.Limit of them. No match is an empty slice with a nil error.
func (c *Client) Search(ctx context.Context, q domain.SearchQuery) ([]domain.AgentRecord, error) {
	result, err := c.SearchPage(ctx, q)
	if err != nil {
		return nil, err
	}
	return result.Agents, nil
}

// SearchPage is Search plus the directory's pagination metadata.
func (c *Client) SearchPage(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	const op = "search"

	if strings.TrimSpace(q.Capability) == "" {
		return nil, fmt.Errorf("%s: %w: capability is required", op, domain.ErrInvalidArgument)
	}
	if q.Limit < 1 {
		return nil, fmt.Errorf("%s: %w: limit must be at least 1, got %d", op, domain.ErrInvalidArgument, q.Limit)
	}

	params := url.Values{}
	params.Set("q", q.Capability)
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.DiscovererSlug != "" {
		params.Set("discovererSlug", q.DiscovererSlug)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if len(q.Skills) > 0 {
		params.Set("skills", strings.Join(q.Skills, ","))
	}
	if len(q.Protocols) > 0 {
		params.Set("protocols", strings.Join(q.Protocols, ","))
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	respBody, err := c.roundTrip(ctx, op, c.searchTimeout, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(op, respBody)
	if err != nil {
		return nil, err
	}

	var raw []rawAgent
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return nil, &domain.ProtocolError{Op: op, Err: fmt.Errorf("data is not a list of agents: %w", err)}
	}

	agents := make([]domain.AgentRecord, 0, len(raw))
	for i, a := range raw {
		if len(agents) == q.Limit {
			break
		}
		if a.Slug == "" {
			return nil, &domain.ProtocolError{Op: op, Err: fmt.Errorf("agent at index %d has no slug", i)}
		}
		agents = append(agents, c.toRecord(a))
	}

	return &domain.SearchResult{Agents: agents, Meta: env.Meta}, nil
}

// Connect delivers req.Body to req.ToSlug and returns the target's response
// body unmodified.
func (c *Client) Connect(ctx context.Context, req domain.ConnectRequest) (json.RawMessage, error) {
	const op = "connect"

	switch {
	case req.FromSlug == "":
		return nil, fmt.Errorf("%s: %w: from slug is required", op, domain.ErrInvalidArgument)
	case req.ToSlug == "":
		return nil, fmt.Errorf("%s: %w: to slug is required", op, domain.ErrInvalidArgument)
	case req.Body == nil:
		return nil, fmt.Errorf("%s: %w: body is required", op, domain.ErrInvalidArgument)
	case req.APIKey == "":
		return nil, fmt.Errorf("%s: %w: api key is required", op, domain.ErrInvalidArgument)
	}

	payload, err := connectPayload(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: marshal connect body: %v", op, domain.ErrInvalidArgument, err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+req.APIKey)

	endpoint := c.baseURL + agentsPath + url.PathEscape(req.ToSlug) + "/connect"
	respBody, err := c.roundTrip(ctx, op, c.connectTimeout, http.MethodPost, endpoint, payload, header)
	if err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) && domain.IsAuthStatus(te.StatusCode) {
			return nil, &domain.AuthError{Op: op, StatusCode: te.StatusCode, Body: te.Body}
		}
		return nil, err
	}

	if !json.Valid(respBody) {
		return nil, &domain.ProtocolError{Op: op, Err: fmt.Errorf("response is not valid JSON: %s", excerpt(respBody))}
	}

	return json.RawMessage(respBody), nil
}

// GetAgent returns the directory's full record for slug, verbatim.
func (c *Client) GetAgent(ctx context.Context, slug string) (json.RawMessage, error) {
	const op = "get agent"

	if slug == "" {
		return nil, fmt.Errorf("%s: %w: slug is required", op, domain.ErrInvalidArgument)
	}

	respBody, err := c.roundTrip(ctx, op, c.searchTimeout, http.MethodGet, c.baseURL+agentsPath+url.PathEscape(slug), nil, nil)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(op, respBody)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ListCategories returns the categories known to the directory.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	const op = "list categories"

	respBody, err := c.roundTrip(ctx, op, c.searchTimeout, http.MethodGet, c.baseURL+categoriesPath, nil, nil)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(op, respBody)
	if err != nil {
		return nil, err
	}

	var data struct {
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &domain.ProtocolError{Op: op, Err: fmt.Errorf("unmarshal categories: %w", err)}
	}
	if data.Categories == nil {
		return []string{}, nil
	}
	return data.Categories, nil
}

func (c *Client) toRecord(a rawAgent) domain.AgentRecord {
	return domain.AgentRecord{
		Name:              a.Name,
		Slug:              a.Slug,
		Category:          a.Category,
		Protocols:         a.Protocols,
		ProfileURL:        domain.ProfileURL(c.baseURL, a.Slug),
		Description:       a.Description,
		Skills:            a.Skills,
		Rating:            a.Rating,
		ReviewCount:       a.ReviewCount,
		ConnectEnabled:    a.ConnectEnabled,
		PlaygroundEnabled: a.PlaygroundEnabled,
	}
}

// roundTrip performs one request under its own timeout. Every non-2xx status
// comes back as a *domain.TransportError; callers refine it where needed.
func (c *Client) roundTrip(ctx context.Context, op string, timeout time.Duration, method, endpoint string, payload []byte, header http.Header) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportFailure(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportFailure(op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Body: excerpt(respBody)}
	}

	return respBody, nil
}

func decodeEnvelope(op string, body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &domain.ProtocolError{Op: op, Err: fmt.Errorf("unmarshal response: %w (raw: %s)", err, excerpt(body))}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, &domain.ProtocolError{Op: op, Err: errors.New("response has no data field")}
	}
	return &env, nil
}

func transportFailure(op string, err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}
	return &domain.TransportError{Op: op, Timeout: timeout, Err: err}
}

// connectPayload renders {"fromAgentSlug", "body"[, "endpointId"]}. A
// json.RawMessage body is spliced in unchanged; encoding/json would compact it.
func connectPayload(req domain.ConnectRequest) ([]byte, error) {
	var body []byte
	raw, isRaw := req.Body.(json.RawMessage)
	if p, ok := req.Body.(*json.RawMessage); ok && p != nil {
		raw, isRaw = *p, true
	}
	if isRaw {
		if !json.Valid(raw) {
			return nil, errors.New("body is not valid JSON")
		}
		body = raw
	} else {
		b, err := encodeJSON(req.Body)
		if err != nil {
			return nil, err
		}
		body = b
	}

	from, err := encodeJSON(req.FromSlug)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"fromAgentSlug":`)
	buf.Write(from)
	buf.WriteString(`,"body":`)
	buf.Write(body)
	if req.EndpointID != "" {
		id, err := encodeJSON(req.EndpointID)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"endpointId":`)
		buf.Write(id)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// excerpt trims b to at most maxErrorBody bytes without splitting a rune.
func excerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= maxErrorBody {
		return s
	}
	n := maxErrorBody
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
