package managers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lifeisskill/lisk-go/internal/api"
	"github.com/lifeisskill/lisk-go/internal/common"
	"github.com/lifeisskill/lisk-go/internal/dbx"
	"github.com/lifeisskill/lisk-go/internal/logging"
	"github.com/lifeisskill/lisk-go/internal/models"
	"github.com/lifeisskill/lisk-go/internal/repositories/metadata"
	"github.com/lifeisskill/lisk-go/internal/repositories/rankings"
	"github.com/lifeisskill/lisk-go/internal/storage"
)

// UserRankManager owns the rank category: the leaderboards of the user's
// categories.
type UserRankManager struct {
	client api.Client
	db     *sql.DB
	repo   rankings.Repository
	tokens TokenSource
	log    logging.Logger

	fetchMu sync.Mutex
	cacheMu sync.RWMutex
	cache   *models.UserRankData
}

func NewUserRankManager(client api.Client, store *storage.Repositories, tokens TokenSource, log logging.Logger) *UserRankManager {
	return &UserRankManager{
		client: client,
		db:     store.DB,
		repo:   store.Rankings,
		tokens: tokens,
		log:    log.With("manager", "rank"),
	}
}

func (m *UserRankManager) Category() models.Category {
	return models.CategoryRank
}

// LoadFromRepository populates the in-memory container from the local
// store. When nothing is stored yet the container is left unchanged.
func (m *UserRankManager) LoadFromRepository(ctx context.Context) error {
	data, err := m.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rankings: %w", err)
	}
	rec, err := LoadCheckSums(ctx, metadata.NewSQLiteRepository(m.db))
	if err != nil {
		return err
	}
	sum := ""
	if rec != nil {
		sum = rec.Rank
	}
	if len(data) == 0 && sum == "" {
		return nil
	}

	m.cacheMu.Lock()
	m.cache = &models.UserRankData{CheckSum: sum, Data: data}
	m.cacheMu.Unlock()
	return nil
}

// Fetch downloads the payload and atomically replaces table, checksum, and
// cache.
func (m *UserRankManager) Fetch(ctx context.Context, token string) error {
	m.fetchMu.Lock()
	defer m.fetchMu.Unlock()

	data, err := m.client.Rankings(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("rank fetch failed: %w", err)
	}

	err = dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := rankings.NewSQLiteRepository(tx).ReplaceAll(ctx, data.Data); err != nil {
			return err
		}
		return UpdateCheckSum(ctx, metadata.NewSQLiteRepository(tx), m.Category(), data.CheckSum)
	})
	if err != nil {
		return fmt.Errorf("rank persist failed: %w", err)
	}

	m.cacheMu.Lock()
	m.cache = data
	m.cacheMu.Unlock()

	m.log.Debug(ctx, "category replaced", "checksum", data.CheckSum, "leaderboards", len(data.Data))
	return nil
}

// FetchCurrent resolves the session token and fetches.
func (m *UserRankManager) FetchCurrent(ctx context.Context) error {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return err
	}
	return m.Fetch(ctx, token)
}

// GetAll returns the cached leaderboards. Never triggers a fetch.
func (m *UserRankManager) GetAll() []models.Ranking {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return nil
	}
	return slices.Clone(m.cache.Data)
}

// ByCategory returns one category's cached leaderboard.
func (m *UserRankManager) ByCategory(categoryID string) *models.Ranking {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return nil
	}
	for i := range m.cache.Data {
		if m.cache.Data[i].CategoryID == categoryID {
			r := m.cache.Data[i]
			return &r
		}
	}
	return nil
}

// CheckSum returns the checksum of the cached container ("" when empty).
func (m *UserRankManager) CheckSum() string {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return ""
	}
	return m.cache.CheckSum
}

// Clear wipes the category on disk and in memory (logout, account switch).
func (m *UserRankManager) Clear(ctx context.Context) error {
	if err := m.repo.DeleteAll(ctx); err != nil {
		return err
	}
	m.cacheMu.Lock()
	m.cache = nil
	m.cacheMu.Unlock()
	return nil
}
