package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/medisync/internal/client/models"
	"github.com/dmitrijs2005/medisync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/medisync/internal/common"
	"github.com/dmitrijs2005/medisync/internal/cryptox"
	"github.com/dmitrijs2005/medisync/internal/dbx"
)

// ErrSealed means a stored slot could not be opened with the configured
// passphrase (wrong passphrase, or the slot was written in plain text).
// Load drops such slots and reports an empty pair instead.
var ErrSealed = errors.New("stored token cannot be unsealed")

// SQLiteStore persists the pair in the metadata table. With a passphrase the
// slots are sealed with AES-GCM; the argon2 salt lives next to them.
type SQLiteStore struct {
	db *sql.DB

	// mu serializes writes and the unreadable-slot cleanup.
	mu  sync.Mutex
	key []byte
}

// NewSQLiteStore opens the store. An empty passphrase stores tokens as is.
func NewSQLiteStore(ctx context.Context, db *sql.DB, passphrase []byte) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if len(passphrase) == 0 {
		return s, nil
	}

	repo := metadata.NewSQLiteRepository(db)
	salt, ok, err := repo.Get(ctx, common.SealSaltSlot)
	if err != nil {
		return nil, err
	}
	if !ok {
		if salt, err = cryptox.RandomBytes(cryptox.SaltSize); err != nil {
			return nil, err
		}
		if err := repo.Set(ctx, common.SealSaltSlot, salt); err != nil {
			return nil, err
		}
	}
	s.key = cryptox.DeriveKey(passphrase, salt)
	return s, nil
}

// Load returns the stored pair. Slots that cannot be unsealed are removed,
// leaving the client signed out rather than unable to reach the server.
func (s *SQLiteStore) Load(ctx context.Context) (models.TokenPair, error) {
	pair, err := s.load(ctx)
	if !errors.Is(err, ErrSealed) {
		return pair, err
	}
	if err := s.dropUnreadable(ctx); err != nil {
		return models.TokenPair{}, fmt.Errorf("drop unreadable credentials: %w", err)
	}
	return s.load(ctx)
}

func (s *SQLiteStore) load(ctx context.Context) (models.TokenPair, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	access, err := s.read(ctx, repo, common.AccessTokenSlot)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.read(ctx, repo, common.RefreshTokenSlot)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, pair models.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := s.write(ctx, repo, common.AccessTokenSlot, pair.Access); err != nil {
			return err
		}
		return s.write(ctx, repo, common.RefreshTokenSlot, pair.Refresh)
	})
}

func (s *SQLiteStore) Rotate(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := s.write(ctx, repo, common.AccessTokenSlot, access); err != nil {
			return err
		}
		if refresh == "" {
			return nil
		}
		return s.write(ctx, repo, common.RefreshTokenSlot, refresh)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo := metadata.NewSQLiteRepository(s.db)
	if err := repo.Delete(ctx, common.AccessTokenSlot, common.RefreshTokenSlot); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// dropUnreadable clears both slots if either still fails to unseal. The
// check is repeated under mu so a pair saved meanwhile survives.
func (s *SQLiteStore) dropUnreadable(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo := metadata.NewSQLiteRepository(s.db)
	for _, slot := range []string{common.AccessTokenSlot, common.RefreshTokenSlot} {
		if _, err := s.read(ctx, repo, slot); errors.Is(err, ErrSealed) {
			return repo.Delete(ctx, common.AccessTokenSlot, common.RefreshTokenSlot)
		}
	}
	return nil
}

func (s *SQLiteStore) read(ctx context.Context, repo metadata.Repository, slot string) (string, error) {
	raw, ok, err := repo.Get(ctx, slot)
	if err != nil || !ok {
		return "", err
	}
	if s.key == nil {
		return string(raw), nil
	}
	plain, err := cryptox.Open(s.key, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrSealed, slot)
	}
	return string(plain), nil
}

// write stores value in slot; an empty value removes the slot.
func (s *SQLiteStore) write(ctx context.Context, repo metadata.Repository, slot, value string) error {
	if value == "" {
		return repo.Delete(ctx, slot)
	}
	raw := []byte(value)
	if s.key != nil {
		sealed, err := cryptox.Seal(s.key, raw)
		if err != nil {
			return fmt.Errorf("seal %s: %w", slot, err)
		}
		raw = sealed
	}
	return repo.Set(ctx, slot, raw)
}
