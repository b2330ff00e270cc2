package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/neurofit/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/neurofit/internal/common"
	"github.com/dmitrijs2005/neurofit/internal/dbx"
)

// Credentials is the persisted form of a session.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

// Store persists Credentials. Load on an empty store returns zero Credentials
// and no error.
type Store interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, c Credentials) error
	Clear(ctx context.Context) error
}

// SQLiteStore keeps credentials in the metadata table under the keys
// accessToken, refreshToken and userId.
type SQLiteStore struct {
	db *sql.DB
	// repo binds a metadata repository to the database or to a transaction.
	repo func(q dbx.DBTX) metadata.Repository
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:   db,
		repo: func(q dbx.DBTX) metadata.Repository { return metadata.NewSQLiteRepository(q) },
	}
}

// Load reads the whole metadata table in one query and picks the session keys.
func (s *SQLiteStore) Load(ctx context.Context) (Credentials, error) {
	all, err := s.repo(s.db).List(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("load session: %w", err)
	}
	return Credentials{
		AccessToken:  all[common.AccessTokenKey],
		RefreshToken: all[common.RefreshTokenKey],
		UserID:       all[common.UserIDKey],
	}, nil
}

// Save replaces all three keys in one transaction. Empty values delete the key.
func (s *SQLiteStore) Save(ctx context.Context, c Credentials) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		values := map[string]string{
			common.AccessTokenKey:  c.AccessToken,
			common.RefreshTokenKey: c.RefreshToken,
			common.UserIDKey:       c.UserID,
		}
		for key, value := range values {
			var err error
			if value == "" {
				err = repo.Delete(ctx, key)
			} else {
				err = repo.Set(ctx, key, value)
			}
			if err != nil {
				return fmt.Errorf("save session: %w", err)
			}
		}
		return nil
	})
}

// Clear removes only the session keys. Other metadata is left alone.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := s.repo(s.db).Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey, common.UserIDKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// MemoryStore is a Store for tests and throwaway sessions.
type MemoryStore struct {
	mu sync.Mutex
	c  Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.c, nil
}

func (m *MemoryStore) Save(_ context.Context, c Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c = c
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c = Credentials{}
	return nil
}
