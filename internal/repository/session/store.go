// Package session stores per-user credentials under generated session ids,
// replacing the process-wide token map the service grew out of.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SL177Y-0/fomoscore/internal/db"
	"github.com/SL177Y-0/fomoscore/internal/domain"
)

// store is the consumer interface for session persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// record is the persisted credential shape.
type record struct {
	Token string `json:"token"`
	DID   string `json:"did,omitempty"`
}

// Store persists credentials keyed by opaque session ids with a TTL.
type Store struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a session store. prefix namespaces keys in the shared
// database; ttl bounds how long a stored credential stays usable.
func New(s store, prefix string, ttl time.Duration) *Store {
	return &Store{store: s, prefix: prefix, ttl: ttl}
}

// Put stores the credential and returns the generated session id.
func (s *Store) Put(ctx context.Context, cred domain.Credential) (string, error) {
	if !cred.Valid() {
		return "", domain.ErrNoCredential
	}

	data, err := json.Marshal(record{Token: cred.Token, DID: cred.DID})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	id := "user-" + uuid.NewString()
	if err := s.store.SetWithTTL(ctx, s.prefix+id, data, s.ttl); err != nil {
		return "", fmt.Errorf("store session %s: %w", id, err)
	}
	return id, nil
}

// Lookup returns the credential stored under the session id.
// Returns domain.ErrSessionNotFound for unknown or expired sessions.
func (s *Store) Lookup(ctx context.Context, id string) (domain.Credential, error) {
	data, err := s.store.Get(ctx, s.prefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Credential{}, domain.ErrSessionNotFound
		}
		return domain.Credential{}, fmt.Errorf("load session %s: %w", id, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Credential{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return domain.Credential{Token: rec.Token, DID: rec.DID}, nil
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.store.Del(ctx, s.prefix+id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
