package managers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/lifeisskill/lisk-go/internal/api"
	"github.com/lifeisskill/lisk-go/internal/common"
	"github.com/lifeisskill/lisk-go/internal/dbx"
	"github.com/lifeisskill/lisk-go/internal/logging"
	"github.com/lifeisskill/lisk-go/internal/models"
	"github.com/lifeisskill/lisk-go/internal/repositories/genericpoints"
	"github.com/lifeisskill/lisk-go/internal/repositories/metadata"
	"github.com/lifeisskill/lisk-go/internal/storage"
)

// GenericPointsManager owns the generic-points category: the physical
// markers placed in the field, shared by all users. The payload is not
// user-specific, so it survives an ordinary logout.
type GenericPointsManager struct {
	client api.Client
	db     *sql.DB
	repo   genericpoints.Repository
	tokens TokenSource
	log    logging.Logger

	fetchMu sync.Mutex
	cacheMu sync.RWMutex
	cache   *models.GenericPointData
	lastLoc *models.Location
}

func NewGenericPointsManager(client api.Client, store *storage.Repositories, tokens TokenSource, log logging.Logger) *GenericPointsManager {
	return &GenericPointsManager{
		client: client,
		db:     store.DB,
		repo:   store.GenericPoints,
		tokens: tokens,
		log:    log.With("manager", "generic-points"),
	}
}

func (m *GenericPointsManager) Category() models.Category {
	return models.CategoryGenericPoints
}

// UpdateLocation records the device's last-known position; it is attached
// to subsequent payload fetches so the server can prioritize nearby points.
func (m *GenericPointsManager) UpdateLocation(loc *models.Location) {
	m.cacheMu.Lock()
	m.lastLoc = loc
	m.cacheMu.Unlock()
}

// LoadFromRepository populates the in-memory container from the local
// store. When nothing is stored yet the container is left unchanged.
func (m *GenericPointsManager) LoadFromRepository(ctx context.Context) error {
	points, err := m.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load generic points: %w", err)
	}
	rec, err := LoadCheckSums(ctx, metadata.NewSQLiteRepository(m.db))
	if err != nil {
		return err
	}
	sum := ""
	if rec != nil {
		sum = rec.Points
	}
	if len(points) == 0 && sum == "" {
		return nil
	}

	m.cacheMu.Lock()
	m.cache = &models.GenericPointData{CheckSum: sum, Data: points}
	m.cacheMu.Unlock()
	return nil
}

// Fetch downloads the payload and atomically replaces table, checksum, and
// cache.
func (m *GenericPointsManager) Fetch(ctx context.Context, token string) error {
	m.fetchMu.Lock()
	defer m.fetchMu.Unlock()

	m.cacheMu.RLock()
	loc := m.lastLoc
	m.cacheMu.RUnlock()

	data, err := m.client.GenericPoints(ctx, token, loc)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("generic points fetch failed: %w", err)
	}

	err = dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := genericpoints.NewSQLiteRepository(tx).ReplaceAll(ctx, data.Data); err != nil {
			return err
		}
		return UpdateCheckSum(ctx, metadata.NewSQLiteRepository(tx), m.Category(), data.CheckSum)
	})
	if err != nil {
		return fmt.Errorf("generic points persist failed: %w", err)
	}

	m.cacheMu.Lock()
	m.cache = data
	m.cacheMu.Unlock()

	m.log.Debug(ctx, "category replaced", "checksum", data.CheckSum, "records", len(data.Data))
	return nil
}

// FetchCurrent resolves the session token and fetches.
func (m *GenericPointsManager) FetchCurrent(ctx context.Context) error {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return err
	}
	return m.Fetch(ctx, token)
}

// GetAll returns the cached points. Never triggers a fetch.
func (m *GenericPointsManager) GetAll() []models.GenericPoint {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return nil
	}
	return slices.Clone(m.cache.Data)
}

// GetByID returns one cached point.
func (m *GenericPointsManager) GetByID(id string) *models.GenericPoint {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return nil
	}
	for i := range m.cache.Data {
		if m.cache.Data[i].ID == id {
			p := m.cache.Data[i]
			return &p
		}
	}
	return nil
}

// Closest returns up to n active points nearest to loc.
func (m *GenericPointsManager) Closest(loc models.Location, n int) []models.GenericPoint {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil || n <= 0 {
		return nil
	}

	active := make([]models.GenericPoint, 0, len(m.cache.Data))
	for _, p := range m.cache.Data {
		if p.Active {
			active = append(active, p)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return haversine(loc, active[i].Location) < haversine(loc, active[j].Location)
	})
	if len(active) > n {
		active = active[:n]
	}
	return active
}

// CheckSum returns the checksum of the cached container ("" when empty).
func (m *GenericPointsManager) CheckSum() string {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return ""
	}
	return m.cache.CheckSum
}

// Clear wipes the category on disk and in memory. Called on account switch
// only; generic points survive an ordinary logout.
func (m *GenericPointsManager) Clear(ctx context.Context) error {
	if err := m.repo.DeleteAll(ctx); err != nil {
		return err
	}
	m.cacheMu.Lock()
	m.cache = nil
	m.cacheMu.Unlock()
	return nil
}

const earthRadiusMeters = 6371000

// haversine returns the great-circle distance between two fixes in meters.
func haversine(a, b models.Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
