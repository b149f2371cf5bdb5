// Package score orchestrates the scoring pipeline: credential resolution,
// concurrent collection fetch, keyword scan, score computation.
package score

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/SL177Y-0/fomoscore/internal/domain"
)

// Service computes FOMO scores for vault-backed users.
type Service struct {
	resolver     CredentialResolver
	fetcher      ActivityFetcher
	keywords     []string
	messagesOnly bool
	logger       *zap.Logger
}

// New creates a score service. An empty keyword list falls back to the
// default set.
func New(resolver CredentialResolver, fetcher ActivityFetcher, keywords []string, messagesOnly bool, logger *zap.Logger) *Service {
	if len(keywords) == 0 {
		keywords = domain.DefaultKeywords
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver:     resolver,
		fetcher:      fetcher,
		keywords:     keywords,
		messagesOnly: messagesOnly,
		logger:       logger,
	}
}

// Calculate resolves raw auth input and scores the resulting credential.
func (s *Service) Calculate(ctx context.Context, raw string) (domain.ScoreResult, error) {
	cred, err := s.resolver.Resolve(ctx, raw)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	return s.CalculateForCredential(ctx, cred)
}

// CalculateForCredential scores an already-resolved credential. Groups and
// messages are fetched concurrently; a failure of either surfaces as a
// single error with no partial result.
func (s *Service) CalculateForCredential(ctx context.Context, cred domain.Credential) (domain.ScoreResult, error) {
	groups, messages, err := s.fetchBoth(ctx, cred.Token, true)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	scanned := messages
	if !s.messagesOnly {
		scanned = make([]domain.Item, 0, len(groups)+len(messages))
		scanned = append(scanned, groups...)
		scanned = append(scanned, messages...)
	}
	report := domain.ScanKeywords(scanned, s.keywords)
	computed := domain.ComputeScore(len(groups), len(messages))

	s.logger.Info("Score computed",
		zap.String("did", cred.DID),
		zap.Int("groups", len(groups)),
		zap.Int("messages", len(messages)),
		zap.Float64("score", computed.Value),
		zap.String("title", computed.Title),
		zap.Int("keyword_hits", report.Total),
	)

	return domain.ScoreResult{
		Score:    computed.Value,
		Title:    computed.Title,
		DID:      cred.DID,
		Groups:   len(groups),
		Messages: len(messages),
		Keywords: report,
		HasData:  len(groups) > 0 || len(messages) > 0,
	}, nil
}

// Counts returns group and message counts without pulling raw items.
func (s *Service) Counts(ctx context.Context, cred domain.Credential) (int, int, error) {
	groups, messages, err := s.fetchBoth(ctx, cred.Token, false)
	if err != nil {
		return 0, 0, err
	}
	return len(groups), len(messages), nil
}

// Activity returns the raw items of one collection.
func (s *Service) Activity(ctx context.Context, cred domain.Credential, kind domain.CollectionKind) ([]domain.Item, error) {
	return s.fetcher.Fetch(ctx, cred.Token, kind, true)
}

// Stats returns counts plus the keyword report over the scanned items.
func (s *Service) Stats(ctx context.Context, cred domain.Credential) (int, int, domain.KeywordReport, error) {
	groups, messages, err := s.fetchBoth(ctx, cred.Token, true)
	if err != nil {
		return 0, 0, domain.KeywordReport{}, err
	}

	scanned := messages
	if !s.messagesOnly {
		scanned = make([]domain.Item, 0, len(groups)+len(messages))
		scanned = append(scanned, groups...)
		scanned = append(scanned, messages...)
	}
	return len(groups), len(messages), domain.ScanKeywords(scanned, s.keywords), nil
}

// fetchBoth retrieves both collections in parallel and joins before any
// result is read.
func (s *Service) fetchBoth(ctx context.Context, token string, needItems bool) ([]domain.Item, []domain.Item, error) {
	var (
		wg          sync.WaitGroup
		groups      []domain.Item
		messages    []domain.Item
		groupsErr   error
		messagesErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		groups, groupsErr = s.fetcher.Fetch(ctx, token, domain.CollectionGroups, needItems)
	}()
	go func() {
		defer wg.Done()
		messages, messagesErr = s.fetcher.Fetch(ctx, token, domain.CollectionMessages, needItems)
	}()
	wg.Wait()

	if groupsErr != nil {
		return nil, nil, fmt.Errorf("fetch groups: %w", groupsErr)
	}
	if messagesErr != nil {
		return nil, nil, fmt.Errorf("fetch messages: %w", messagesErr)
	}
	return groups, messages, nil
}
