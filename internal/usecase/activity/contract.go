package activity

import (
	"context"

	"github.com/SL177Y-0/fomoscore/internal/domain"
)

// VaultAPI is the vault transport contract for activity fetching.
type VaultAPI interface {
	Count(ctx context.Context, token, schemaURL string) (int, error)
	Query(ctx context.Context, token, schemaURL string, limit, skip int) ([]domain.Item, error)
	Search(ctx context.Context, token, term string) ([]domain.Item, error)
}
