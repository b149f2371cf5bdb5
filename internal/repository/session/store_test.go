package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SL177Y-0/fomoscore/internal/db"
	"github.com/SL177Y-0/fomoscore/internal/domain"
)

type mockStore struct {
	data    map[string][]byte
	setErr  error
	getErr  error
	lastTTL time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.lastTTL = ttl
	return nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestPutLookupRoundTrip(t *testing.T) {
	kv := newMockStore()
	s := New(kv, "test:session:", time.Hour)

	cred := domain.Credential{Token: "tok-123", DID: "did:vda:abc"}
	id, err := s.Put(context.Background(), cred)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(id, "user-") {
		t.Errorf("session id = %q, want user- prefix", id)
	}
	if kv.lastTTL != time.Hour {
		t.Errorf("ttl = %v, want %v", kv.lastTTL, time.Hour)
	}

	got, err := s.Lookup(context.Background(), id)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != cred {
		t.Errorf("Lookup = %+v, want %+v", got, cred)
	}
}

func TestPutRejectsEmptyCredential(t *testing.T) {
	s := New(newMockStore(), "test:session:", time.Hour)

	if _, err := s.Put(context.Background(), domain.Credential{}); !errors.Is(err, domain.ErrNoCredential) {
		t.Errorf("Put error = %v, want ErrNoCredential", err)
	}
}

func TestLookupUnknownSession(t *testing.T) {
	s := New(newMockStore(), "test:session:", time.Hour)

	_, err := s.Lookup(context.Background(), "user-missing")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Lookup error = %v, want ErrSessionNotFound", err)
	}
}

func TestLookupStoreFailure(t *testing.T) {
	kv := newMockStore()
	kv.getErr = errors.New("connection refused")
	s := New(kv, "test:session:", time.Hour)

	_, err := s.Lookup(context.Background(), "user-x")
	if err == nil || errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Lookup error = %v, want plain failure", err)
	}
}

func TestDeleteRemovesSession(t *testing.T) {
	kv := newMockStore()
	s := New(kv, "test:session:", time.Hour)

	id, err := s.Put(context.Background(), domain.Credential{Token: "tok"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Lookup(context.Background(), id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Lookup after delete = %v, want ErrSessionNotFound", err)
	}
}
