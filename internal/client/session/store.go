// Package session owns the durable credential pair: the two token slots the
// transport reads on every call, rotates on refresh and clears when the
// session ends.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/medisync/internal/client/models"
)

// CredentialStore is durable client storage for the credential pair. An
// empty slot is a valid state (logged out). Implementations are safe for
// concurrent use.
type CredentialStore interface {
	Load(ctx context.Context) (models.TokenPair, error)
	// Save replaces both slots.
	Save(ctx context.Context, pair models.TokenPair) error
	// Rotate stores a refreshed access token. refresh replaces the stored
	// refresh token only when non-empty.
	Rotate(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the pair in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	pair models.TokenPair
}

func NewMemoryStore(pair models.TokenPair) *MemoryStore {
	return &MemoryStore{pair: pair}
}

func (m *MemoryStore) Load(context.Context) (models.TokenPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, nil
}

func (m *MemoryStore) Save(_ context.Context, pair models.TokenPair) error {
	m.mu.Lock()
	m.pair = pair
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Rotate(_ context.Context, access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair.Access = access
	if refresh != "" {
		m.pair.Refresh = refresh
	}
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.pair = models.TokenPair{}
	m.mu.Unlock()
	return nil
}
