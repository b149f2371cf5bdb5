package score

import (
	"context"

	"github.com/SL177Y-0/fomoscore/internal/domain"
)

// CredentialResolver turns raw auth input into a credential.
type CredentialResolver interface {
	Resolve(ctx context.Context, raw string) (domain.Credential, error)
}

// ActivityFetcher retrieves one collection from the vault.
type ActivityFetcher interface {
	Fetch(ctx context.Context, token string, kind domain.CollectionKind, needItems bool) ([]domain.Item, error)
}
