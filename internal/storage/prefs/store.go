// Package prefs persists viewer preferences using BadgerHold.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/stockview/internal/common"
	"github.com/bobmcallan/stockview/internal/models"
)

// KeyLastPortfolio stores the id of the most recently used portfolio.
const KeyLastPortfolio = "last_portfolio_id"

// keyPrefix namespaces preference records inside the store.
const keyPrefix = "pref\x00"

// Store implements interfaces.PrefsStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore opens (or creates) the preference database at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create prefs path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open prefs db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("Prefs store opened")
	return &Store{db: db, logger: logger}, nil
}

// Get returns the stored value for key, or "" when unset.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	var p models.Preference
	if err := s.db.Get(keyPrefix+key, &p); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get pref '%s': %w", key, err)
	}
	return p.Value, nil
}

// Set stores value under key, bumping its version.
func (s *Store) Set(_ context.Context, key, value string) error {
	version := 1
	var existing models.Preference
	if err := s.db.Get(keyPrefix+key, &existing); err == nil {
		version = existing.Version + 1
	}

	p := &models.Preference{
		Key:       key,
		Value:     value,
		Version:   version,
		UpdatedAt: time.Now(),
	}
	if err := s.db.Upsert(keyPrefix+key, p); err != nil {
		return fmt.Errorf("failed to set pref '%s': %w", key, err)
	}
	s.logger.Debug().Str("key", key).Int("version", version).Msg("Pref saved")
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.db.Delete(keyPrefix+key, models.Preference{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete pref '%s': %w", key, err)
	}
	return nil
}

// LastPortfolioID returns the remembered portfolio id, 0 if none.
func (s *Store) LastPortfolioID(ctx context.Context) (int64, error) {
	v, err := s.Get(ctx, KeyLastPortfolio)
	if err != nil || v == "" {
		return 0, err
	}
	return parseID(v)
}

// SetLastPortfolioID remembers id as the last used portfolio.
func (s *Store) SetLastPortfolioID(ctx context.Context, id int64) error {
	return s.Set(ctx, KeyLastPortfolio, strconv.FormatInt(id, 10))
}

// ClearLastPortfolioID forgets the last used portfolio.
func (s *Store) ClearLastPortfolioID(ctx context.Context) error {
	return s.Delete(ctx, KeyLastPortfolio)
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func parseID(v string) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid stored portfolio id %q: %w", v, err)
	}
	return id, nil
}

// MemoryStore is a non-persistent PrefsStore.
type MemoryStore struct {
	mu     sync.Mutex
	lastID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LastPortfolioID(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastID, nil
}

func (m *MemoryStore) SetLastPortfolioID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID = id
	return nil
}

func (m *MemoryStore) ClearLastPortfolioID(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID = 0
	return nil
}

func (m *MemoryStore) Close() error { return nil }
