// Package activity fetches a user's chat collections from the vault,
// degrading through cheaper-to-more-expensive strategies as endpoints fail.
package activity

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/SL177Y-0/fomoscore/internal/domain"
	"github.com/SL177Y-0/fomoscore/internal/metrics"
)

const (
	defaultPageSize = 100
	defaultMaxPages = 50
)

// Service fetches one collection per call. Vault nodes differ in which
// endpoints they expose, so the fetch runs as a tiered fallback: count
// endpoint, then paginated query, then universal search.
type Service struct {
	vault      VaultAPI
	pageSize   int
	maxPages   int
	searchTerm string
	logger     *zap.Logger
}

// New creates an activity fetcher with default pagination bounds.
func New(vault VaultAPI, searchTerm string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		vault:      vault,
		pageSize:   defaultPageSize,
		maxPages:   defaultMaxPages,
		searchTerm: searchTerm,
		logger:     logger,
	}
}

// WithPagination overrides the page size and page cap.
func (s *Service) WithPagination(pageSize, maxPages int) *Service {
	if pageSize > 0 {
		s.pageSize = pageSize
	}
	if maxPages > 0 {
		s.maxPages = maxPages
	}
	return s
}

// Fetch returns the items of one collection. When needItems is false the
// caller only consumes len(result), so the count endpoint is tried first
// and a successful count short-circuits into placeholder items. Item-level
// tiers follow: paginated query, then universal search filtered by the
// collection's schema. All tiers failing wraps domain.ErrUpstream.
func (s *Service) Fetch(
	ctx context.Context, token string, kind domain.CollectionKind, needItems bool,
) ([]domain.Item, error) {
	collection := string(kind)

	if !needItems {
		n, err := s.vault.Count(ctx, token, kind.SchemaURL())
		if err == nil {
			metrics.FetchTierTotal.WithLabelValues(collection, "count", "hit").Inc()
			return domain.PlaceholderItems(n), nil
		}
		metrics.FetchTierTotal.WithLabelValues(collection, "count", "miss").Inc()
		s.logger.Debug("Count tier failed, falling back to query",
			zap.String("collection", collection),
			zap.Error(err),
		)
	}

	items, err := s.fetchPaged(ctx, token, kind)
	if err == nil {
		metrics.FetchTierTotal.WithLabelValues(collection, "query", "hit").Inc()
		return items, nil
	}
	metrics.FetchTierTotal.WithLabelValues(collection, "query", "miss").Inc()
	s.logger.Debug("Query tier failed, falling back to search",
		zap.String("collection", collection),
		zap.Error(err),
	)

	items, err = s.searchFallback(ctx, token, kind)
	if err == nil {
		metrics.FetchTierTotal.WithLabelValues(collection, "search", "hit").Inc()
		return items, nil
	}
	metrics.FetchTierTotal.WithLabelValues(collection, "search", "miss").Inc()

	return nil, fmt.Errorf("fetch %s: all strategies failed: %w: %w", collection, err, domain.ErrUpstream)
}

// fetchPaged pulls the full collection page by page. A short page ends the
// loop; hitting the page cap returns what was accumulated.
func (s *Service) fetchPaged(
	ctx context.Context, token string, kind domain.CollectionKind,
) ([]domain.Item, error) {
	all := []domain.Item{}
	for page := 0; page < s.maxPages; page++ {
		items, err := s.vault.Query(ctx, token, kind.SchemaURL(), s.pageSize, page*s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		all = append(all, items...)
		if len(items) < s.pageSize {
			return all, nil
		}
	}
	s.logger.Warn("Page cap reached, result may be truncated",
		zap.String("collection", string(kind)),
		zap.Int("max_pages", s.maxPages),
		zap.Int("items", len(all)),
	)
	return all, nil
}

// searchFallback recovers items from the universal search, keeping only
// hits whose schema field belongs to the requested collection.
func (s *Service) searchFallback(
	ctx context.Context, token string, kind domain.CollectionKind,
) ([]domain.Item, error) {
	hits, err := s.vault.Search(ctx, token, s.searchTerm)
	if err != nil {
		return nil, fmt.Errorf("universal search: %w", err)
	}

	fragment := kind.SchemaFragment()
	items := []domain.Item{}
	for _, hit := range hits {
		schema, _ := hit["schema"].(string)
		if strings.Contains(schema, fragment) {
			items = append(items, hit)
		}
	}
	return items, nil
}
