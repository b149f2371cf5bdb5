package domain

import "strings"

const bearerPrefix = "Bearer "

// Credential is a bearer token authorizing access to a user's data vault,
// plus an optional decentralized identifier. The DID may be empty; consumers
// must tolerate unknown identity.
type Credential struct {
	Token string
	DID   string
}

// Valid reports whether the credential carries a usable token.
func (c Credential) Valid() bool { return c.Token != "" }

// BearerValue returns the Authorization header value with exactly one
// "Bearer " prefix, regardless of how the token was supplied.
func (c Credential) BearerValue() string {
	return bearerPrefix + NormalizeToken(c.Token)
}

// NormalizeToken strips an existing "Bearer " prefix and surrounding
// whitespace so tokens are stored in bare form.
func NormalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}
	return token
}
