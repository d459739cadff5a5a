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
	"github.com/lifeisskill/lisk-go/internal/repositories/userpoints"
	"github.com/lifeisskill/lisk-go/internal/storage"
)

// UserPointsManager owns the user-points category: the points the logged-in
// user has earned.
type UserPointsManager struct {
	client api.Client
	db     *sql.DB
	repo   userpoints.Repository
	tokens TokenSource
	log    logging.Logger

	fetchMu sync.Mutex // at most one fetch-and-persist in flight
	cacheMu sync.RWMutex
	cache   *models.UserPointData
}

func NewUserPointsManager(client api.Client, store *storage.Repositories, tokens TokenSource, log logging.Logger) *UserPointsManager {
	return &UserPointsManager{
		client: client,
		db:     store.DB,
		repo:   store.UserPoints,
		tokens: tokens,
		log:    log.With("manager", "user-points"),
	}
}

// Category identifies this manager to the orchestrator.
func (m *UserPointsManager) Category() models.Category {
	return models.CategoryUserPoints
}

// LoadFromRepository populates the in-memory container from the local
// store; used when offline or as a fast local refresh. When nothing is
// stored yet the container is left unchanged.
func (m *UserPointsManager) LoadFromRepository(ctx context.Context) error {
	points, err := m.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load user points: %w", err)
	}
	rec, err := LoadCheckSums(ctx, metadata.NewSQLiteRepository(m.db))
	if err != nil {
		return err
	}
	sum := ""
	if rec != nil {
		sum = rec.UserPoints
	}
	if len(points) == 0 && sum == "" {
		return nil
	}

	m.cacheMu.Lock()
	m.cache = &models.UserPointData{CheckSum: sum, Data: points}
	m.cacheMu.Unlock()
	return nil
}

// Fetch downloads the complete category payload and atomically replaces the
// local table, its checksum field, and the in-memory container. On failure
// the last-known-good state stays authoritative.
func (m *UserPointsManager) Fetch(ctx context.Context, token string) error {
	m.fetchMu.Lock()
	defer m.fetchMu.Unlock()

	data, err := m.client.UserPoints(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("user points fetch failed: %w", err)
	}

	err = dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := userpoints.NewSQLiteRepository(tx).ReplaceAll(ctx, data.Data); err != nil {
			return err
		}
		return UpdateCheckSum(ctx, metadata.NewSQLiteRepository(tx), m.Category(), data.CheckSum)
	})
	if err != nil {
		return fmt.Errorf("user points persist failed: %w", err)
	}

	m.cacheMu.Lock()
	m.cache = data
	m.cacheMu.Unlock()

	m.log.Debug(ctx, "category replaced", "checksum", data.CheckSum, "records", len(data.Data))
	return nil
}

// FetchCurrent resolves the session token and fetches.
func (m *UserPointsManager) FetchCurrent(ctx context.Context) error {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return err
	}
	return m.Fetch(ctx, token)
}

// GetAll returns the cached points. Never triggers a fetch.
func (m *UserPointsManager) GetAll() []models.UserPoint {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return nil
	}
	return slices.Clone(m.cache.Data)
}

// GetByKey returns one cached point by its scan-instance record key.
func (m *UserPointsManager) GetByKey(recordKey string) *models.UserPoint {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return nil
	}
	for i := range m.cache.Data {
		if m.cache.Data[i].RecordKey == recordKey {
			p := m.cache.Data[i]
			return &p
		}
	}
	return nil
}

// PointsByCategory returns the cached points tagged with the given user
// category.
func (m *UserPointsManager) PointsByCategory(categoryID string) []models.UserPoint {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return nil
	}
	var result []models.UserPoint
	for _, p := range m.cache.Data {
		if slices.Contains(p.CategoryIDs, categoryID) {
			result = append(result, p)
		}
	}
	return result
}

// TotalPoints sums the values of the user's points in one category,
// excluding records flagged as not counting toward the total.
func (m *UserPointsManager) TotalPoints(categoryID string) int {
	total := 0
	for _, p := range m.PointsByCategory(categoryID) {
		if p.DoesPointCount {
			total += p.Value
		}
	}
	return total
}

// CheckSum returns the checksum of the cached container ("" when empty).
func (m *UserPointsManager) CheckSum() string {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return ""
	}
	return m.cache.CheckSum
}

// Clear wipes the category on disk and in memory (logout, account switch).
func (m *UserPointsManager) Clear(ctx context.Context) error {
	if err := m.repo.DeleteAll(ctx); err != nil {
		return err
	}
	m.cacheMu.Lock()
	m.cache = nil
	m.cacheMu.Unlock()
	return nil
}
