package credential

import "context"

// IdentityProber resolves the DID behind a bearer token.
type IdentityProber interface {
	LookupDID(ctx context.Context, token string) (string, error)
}
