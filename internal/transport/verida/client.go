// Package verida is the HTTP client for the Verida vault REST API.
package verida

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/SL177Y-0/fomoscore/internal/domain"
	"github.com/SL177Y-0/fomoscore/internal/metrics"
)

// didCacheTTL bounds how long a resolved DID is reused for the same token.
const didCacheTTL = 15 * time.Minute

// Client talks to a Verida vault node on behalf of one bearer token per call.
type Client struct {
	http       *http.Client
	baseURL    string
	source     string
	probePaths []string
	idCache    *cache.Cache
	logger     *zap.Logger
}

// Config holds the vault client settings.
type Config struct {
	BaseURL           string
	TimeoutSec        int
	SourceApplication string
	ProbePaths        []string
	Logger            *zap.Logger
}

// NewClient creates a vault API client.
func NewClient(cfg *Config) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		source:     cfg.SourceApplication,
		probePaths: cfg.ProbePaths,
		idCache:    cache.New(didCacheTTL, 2*didCacheTTL),
		logger:     logger,
	}
}

// countResponse is the /ds/count reply shape.
type countResponse struct {
	Count int `json:"count"`
}

// listEnvelope covers both reply shapes vault nodes are known to emit.
// Shapes are matched in order; both absent means the reply is unusable.
type listEnvelope struct {
	Results []domain.Item `json:"results"`
	Items   []domain.Item `json:"items"`
}

// Count returns the number of items stored under the schema, filtered to
// this client's source application.
func (c *Client) Count(ctx context.Context, token, schemaURL string) (int, error) {
	body := map[string]any{
		"query": map[string]any{"sourceApplication": c.source},
	}

	var resp countResponse
	if err := c.post(ctx, "count", c.datastorePath("count", schemaURL), token, body, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Query returns one page of items stored under the schema, newest first.
func (c *Client) Query(ctx context.Context, token, schemaURL string, limit, skip int) ([]domain.Item, error) {
	options := map[string]any{
		"sort":  []map[string]string{{"_id": "desc"}},
		"limit": limit,
	}
	if skip > 0 {
		options["skip"] = skip
	}
	body := map[string]any{
		"query":   map[string]any{"sourceApplication": c.source},
		"options": options,
	}

	var env listEnvelope
	if err := c.post(ctx, "query", c.datastorePath("query", schemaURL), token, body, &env); err != nil {
		return nil, err
	}

	switch {
	case env.Results != nil:
		return env.Results, nil
	case env.Items != nil:
		return env.Items, nil
	default:
		return nil, fmt.Errorf("query %s: unrecognized response shape", schemaURL)
	}
}

// Search runs the universal keyword search across all of the user's data.
func (c *Client) Search(ctx context.Context, token, term string) ([]domain.Item, error) {
	path := "/search/universal?keywords=" + url.QueryEscape(term)

	var env listEnvelope
	if err := c.get(ctx, "search", path, token, &env); err != nil {
		return nil, err
	}
	if env.Results != nil {
		return env.Results, nil
	}
	return env.Items, nil
}

// LookupDID resolves the DID behind a bearer token, probing the configured
// identity endpoints in order. Results are cached per token.
func (c *Client) LookupDID(ctx context.Context, token string) (string, error) {
	key := domain.NormalizeToken(token)
	if did, ok := c.idCache.Get(key); ok {
		metrics.IdentityCacheTotal.WithLabelValues("hit").Inc()
		return did.(string), nil
	}
	metrics.IdentityCacheTotal.WithLabelValues("miss").Inc()

	var lastErr error
	for _, path := range c.probePaths {
		var payload map[string]any
		if err := c.get(ctx, "identity", path, token, &payload); err != nil {
			lastErr = err
			continue
		}
		if did := extractDID(payload); did != "" {
			c.idCache.SetDefault(key, did)
			return did, nil
		}
		lastErr = fmt.Errorf("probe %s: no did in response", path)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no identity probe paths configured")
	}
	return "", lastErr
}

// HealthCheck verifies the vault node is reachable. Identity probes require
// a token, so an HTTP-level reply of any status counts as alive.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("vault unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}

// datastorePath builds a /ds/<op>/<schema> path with the schema id encoded
// as URL-safe base64, matching what vault nodes expect.
func (c *Client) datastorePath(op, schemaURL string) string {
	encoded := base64.URLEncoding.EncodeToString([]byte(schemaURL))
	return "/ds/" + op + "/" + encoded
}

func (c *Client) post(ctx context.Context, endpoint, path, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint, token, out)
}

func (c *Client) get(ctx context.Context, endpoint, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	return c.do(req, endpoint, token, out)
}

// do executes the request with auth and transport-level metrics, decoding a
// 2xx JSON body into out.
func (c *Client) do(req *http.Request, endpoint, token string, out any) error {
	req.Header.Set("Authorization", domain.Credential{Token: token}.BearerValue())

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.VaultRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.VaultRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug("Vault request rejected",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return fmt.Errorf("%s request: status %d: %s", endpoint, resp.StatusCode, string(snippet))
	}

	metrics.VaultRequestsTotal.WithLabelValues(endpoint, "success").Inc()
	metrics.VaultRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// extractDID pulls a DID out of an identity-probe reply. Probe endpoints
// disagree on nesting, so known locations are tried in order.
func extractDID(payload map[string]any) string {
	paths := [][]string{
		{"did"},
		{"data", "did"},
		{"profile", "did"},
	}
	for _, path := range paths {
		node := any(payload)
		for _, key := range path {
			m, ok := node.(map[string]any)
			if !ok {
				node = nil
				break
			}
			node = m[key]
		}
		if did, ok := node.(string); ok && did != "" {
			return did
		}
	}
	return ""
}
