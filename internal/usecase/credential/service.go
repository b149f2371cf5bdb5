// Package credential turns raw auth input from clients into a usable
// vault credential.
package credential

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/SL177Y-0/fomoscore/internal/domain"
)

// Service resolves raw credential input. Clients send tokens in several
// shapes: a bare string, a prefixed header value, or JSON blobs produced
// by different wallet versions.
type Service struct {
	prober IdentityProber
	logger *zap.Logger
}

// New creates a credential resolver. prober may be nil when identity
// discovery is not needed.
func New(prober IdentityProber, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{prober: prober, logger: logger}
}

// wrappedToken is the newer wallet export: {"token":{"did":...,"_id":...}}.
type wrappedToken struct {
	Token struct {
		DID string `json:"did"`
		ID  string `json:"_id"`
	} `json:"token"`
}

// flatToken is the older export: {"did":...,"_id":...}.
type flatToken struct {
	DID string `json:"did"`
	ID  string `json:"_id"`
}

// Resolve parses raw auth input into a credential. JSON shapes are
// matched in order; input that is not JSON is treated as the token
// itself. The DID is filled from the input when present, otherwise
// discovered via the identity prober on a best-effort basis.
func (s *Service) Resolve(ctx context.Context, raw string) (domain.Credential, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Credential{}, domain.ErrNoCredential
	}

	cred := parseRaw(raw)
	cred.Token = domain.NormalizeToken(cred.Token)
	if !cred.Valid() {
		return domain.Credential{}, domain.ErrNoCredential
	}

	if cred.DID == "" && s.prober != nil {
		did, err := s.prober.LookupDID(ctx, cred.Token)
		if err != nil {
			// Identity is optional. Scoring proceeds without a DID.
			s.logger.Debug("DID discovery failed", zap.Error(err))
		} else {
			cred.DID = did
		}
	}

	return cred, nil
}

func parseRaw(raw string) domain.Credential {
	if !strings.HasPrefix(raw, "{") && !strings.HasPrefix(raw, "\"") {
		return domain.Credential{Token: raw}
	}

	var wrapped wrappedToken
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Token.ID != "" {
		return domain.Credential{Token: wrapped.Token.ID, DID: wrapped.Token.DID}
	}

	var flat flatToken
	if err := json.Unmarshal([]byte(raw), &flat); err == nil && flat.ID != "" {
		return domain.Credential{Token: flat.ID, DID: flat.DID}
	}

	var quoted string
	if err := json.Unmarshal([]byte(raw), &quoted); err == nil && quoted != "" {
		return domain.Credential{Token: quoted}
	}

	// Unparseable JSON-looking input still might be a literal token.
	return domain.Credential{Token: raw}
}
