package managers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lifeisskill/lisk-go/internal/api"
	"github.com/lifeisskill/lisk-go/internal/common"
	"github.com/lifeisskill/lisk-go/internal/logging"
	"github.com/lifeisskill/lisk-go/internal/models"
	"github.com/lifeisskill/lisk-go/internal/repositories/categories"
	"github.com/lifeisskill/lisk-go/internal/storage"
)

// UserCategoryManager owns the user's competition categories. The backend
// serves no checksum for this small data set, so it is re-fetched on every
// full sync instead of being checksum-gated.
type UserCategoryManager struct {
	client api.Client
	repo   categories.Repository
	tokens TokenSource
	log    logging.Logger

	fetchMu sync.Mutex
	cacheMu sync.RWMutex
	cache   *models.UserCategoryData
}

func NewUserCategoryManager(client api.Client, store *storage.Repositories, tokens TokenSource, log logging.Logger) *UserCategoryManager {
	return &UserCategoryManager{
		client: client,
		repo:   store.Categories,
		tokens: tokens,
		log:    log.With("manager", "user-categories"),
	}
}

func (m *UserCategoryManager) Category() models.Category {
	return models.CategoryUserCategories
}

// LoadFromRepository populates the in-memory container from the local
// store. When nothing is stored yet the container is left unchanged.
func (m *UserCategoryManager) LoadFromRepository(ctx context.Context) error {
	data, err := m.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load user categories: %w", err)
	}
	if len(data.Data) == 0 {
		return nil
	}

	m.cacheMu.Lock()
	m.cache = data
	m.cacheMu.Unlock()
	return nil
}

// Fetch downloads the payload and replaces the table and the cache. No
// checksum is involved for this category.
func (m *UserCategoryManager) Fetch(ctx context.Context, token string) error {
	m.fetchMu.Lock()
	defer m.fetchMu.Unlock()

	data, err := m.client.UserCategories(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("user categories fetch failed: %w", err)
	}

	if err := m.repo.Replace(ctx, data); err != nil {
		return fmt.Errorf("user categories persist failed: %w", err)
	}

	m.cacheMu.Lock()
	m.cache = data
	m.cacheMu.Unlock()

	m.log.Debug(ctx, "category replaced", "records", len(data.Data))
	return nil
}

// FetchCurrent resolves the session token and fetches.
func (m *UserCategoryManager) FetchCurrent(ctx context.Context) error {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return err
	}
	return m.Fetch(ctx, token)
}

// GetAll returns the cached categories. Never triggers a fetch.
func (m *UserCategoryManager) GetAll() []models.UserCategory {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return nil
	}
	return slices.Clone(m.cache.Data)
}

// GetByID returns one cached category.
func (m *UserCategoryManager) GetByID(id string) *models.UserCategory {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	if m.cache == nil {
		return nil
	}
	for i := range m.cache.Data {
		if m.cache.Data[i].ID == id {
			c := m.cache.Data[i]
			return &c
		}
	}
	return nil
}

// MainCategory returns the user's primary category, or nil when unknown.
func (m *UserCategoryManager) MainCategory() *models.UserCategory {
	m.cacheMu.RLock()
	id := ""
	if m.cache != nil {
		id = m.cache.MainCategoryID
	}
	m.cacheMu.RUnlock()
	if id == "" {
		return nil
	}
	return m.GetByID(id)
}

// Clear wipes the category on disk and in memory (logout, account switch).
func (m *UserCategoryManager) Clear(ctx context.Context) error {
	if err := m.repo.DeleteAll(ctx); err != nil {
		return err
	}
	m.cacheMu.Lock()
	m.cache = nil
	m.cacheMu.Unlock()
	return nil
}
