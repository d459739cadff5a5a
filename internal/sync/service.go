// Package sync orchestrates the offline-first data lifecycle: checksum-gated
// category refresh, login and logout with their different data-retention
// rules, and escalation of rejected tokens to a forced logout.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lifeisskill/lisk-go/internal/api"
	"github.com/lifeisskill/lisk-go/internal/common"
	"github.com/lifeisskill/lisk-go/internal/events"
	"github.com/lifeisskill/lisk-go/internal/logging"
	"github.com/lifeisskill/lisk-go/internal/managers"
	"github.com/lifeisskill/lisk-go/internal/models"
	"github.com/lifeisskill/lisk-go/internal/netwatch"
	"github.com/lifeisskill/lisk-go/internal/storage"
)

// CategoryManager is what the orchestrator needs from each per-category
// manager.
type CategoryManager interface {
	Category() models.Category
	Fetch(ctx context.Context, token string) error
	LoadFromRepository(ctx context.Context) error
	Clear(ctx context.Context) error
}

// Service wires the managers together. Gated categories are refreshed only
// when the server-side checksum differs from the stored one; ungated ones
// are refreshed on every full sync.
type Service struct {
	client    api.Client
	store     *storage.Repositories
	session   *managers.SessionManager
	checksums *managers.CheckSumStore
	monitor   *netwatch.Monitor
	bus       *events.Bus
	log       logging.Logger

	gated   []CategoryManager
	ungated []CategoryManager
	// user-bound managers, cleared on every logout; gated/ungated minus
	// the generic-points manager, which survives an ordinary logout
	userBound []CategoryManager

	loginMu sync.Mutex // login, logout and forced logout are serial

	// genCtx is cancelled on logout so in-flight fetches of the previous
	// session cannot write their responses into the store
	genMu     sync.Mutex
	genCtx    context.Context
	genCancel context.CancelFunc
}

// Managers bundles the concrete managers handed to NewService.
type Managers struct {
	Session       *managers.SessionManager
	UserPoints    *managers.UserPointsManager
	GenericPoints *managers.GenericPointsManager
	Rank          *managers.UserRankManager
	Categories    *managers.UserCategoryManager
}

func NewService(client api.Client, store *storage.Repositories, m Managers, monitor *netwatch.Monitor, bus *events.Bus, log logging.Logger) *Service {
	genCtx, genCancel := context.WithCancel(context.Background())
	return &Service{
		client:    client,
		store:     store,
		session:   m.Session,
		checksums: managers.NewCheckSumStore(store.Metadata),
		monitor:   monitor,
		bus:       bus,
		log:       log.With("component", "sync"),
		gated:     []CategoryManager{m.UserPoints, m.Rank, m.GenericPoints},
		ungated:   []CategoryManager{m.Categories},
		userBound: []CategoryManager{m.UserPoints, m.Rank, m.Categories},
		genCtx:    genCtx,
		genCancel: genCancel,
	}
}

// LoadData populates every manager from the local store; the app is usable
// on cached data before (or without) any network round trip.
func (s *Service) LoadData(ctx context.Context) error {
	if err := s.session.Load(ctx); err != nil {
		return err
	}
	var errs []error
	for _, m := range s.managers() {
		if err := m.LoadFromRepository(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.Category(), err))
		}
	}
	return errors.Join(errs...)
}

// FetchNewDataIfNecessary runs one full sync pass: every gated category
// whose remote checksum differs is re-downloaded, ungated categories are
// downloaded unconditionally, all in parallel. Per-category failures do not
// stop the siblings; a rejected token stops everything and forces a logout.
func (s *Service) FetchNewDataIfNecessary(ctx context.Context) error {
	if s.monitor != nil && !s.monitor.Online() {
		return common.ErrUnavailable
	}
	err := s.fetchPass(ctx, nil)
	if errors.Is(err, common.ErrInvalidToken) {
		if ferr := s.ForceLogout(ctx); ferr != nil {
			s.log.Error(ctx, "forced logout failed", "error", ferr)
		}
	}
	return err
}

// Refresh brings the named categories (all of them when none are named)
// up to date: synced against the backend when reachable, reloaded from the
// local store when not. This is the entry point UI-driven refreshes use.
func (s *Service) Refresh(ctx context.Context, cats ...models.Category) error {
	if s.monitor != nil && !s.monitor.Online() {
		var errs []error
		for _, m := range s.managers() {
			if !wants(cats, m.Category()) {
				continue
			}
			if err := m.LoadFromRepository(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", m.Category(), err))
			}
		}
		return errors.Join(errs...)
	}

	only := make(map[models.Category]bool, len(cats))
	for _, c := range cats {
		only[c] = true
	}
	var filter map[models.Category]bool
	if len(only) > 0 {
		filter = only
	}
	err := s.fetchPass(ctx, filter)
	if errors.Is(err, common.ErrInvalidToken) {
		if ferr := s.ForceLogout(ctx); ferr != nil {
			s.log.Error(ctx, "forced logout failed", "error", ferr)
		}
	}
	return err
}

func wants(cats []models.Category, c models.Category) bool {
	if len(cats) == 0 {
		return true
	}
	for _, want := range cats {
		if want == c {
			return true
		}
	}
	return false
}

func (s *Service) managers() []CategoryManager {
	return append(append([]CategoryManager{}, s.gated...), s.ungated...)
}

// fetchPass is the sync pass itself, restricted to the categories in only
// when non-nil. It reports common.ErrInvalidToken without escalating, so
// callers already holding loginMu can escalate themselves.
func (s *Service) fetchPass(ctx context.Context, only map[models.Category]bool) error {
	token, err := s.session.Token(ctx)
	if err != nil {
		return err
	}

	syncCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.generation(), cancel)
	defer stop()

	stored, err := s.checksums.Get(syncCtx)
	if err != nil {
		return err
	}
	if stored == nil {
		stored = &models.CheckSumRecord{}
	}

	var (
		wg      sync.WaitGroup
		invalid atomic.Bool
		errMu   sync.Mutex
		errs    []error
	)
	fail := func(cat models.Category, err error) {
		if errors.Is(err, common.ErrInvalidToken) {
			invalid.Store(true)
			return
		}
		s.bus.Publish(events.Event{Kind: events.KindSyncError, Category: cat, Err: err})
		errMu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", cat, err))
		errMu.Unlock()
	}

	for _, m := range s.gated {
		if only != nil && !only[m.Category()] {
			continue
		}
		wg.Add(1)
		go func(m CategoryManager) {
			defer wg.Done()
			if invalid.Load() {
				return
			}
			cat := m.Category()

			remote, err := s.client.Checksum(syncCtx, token, cat)
			if err != nil {
				if errors.Is(err, common.ErrInvalidToken) {
					invalid.Store(true)
					return
				}
				// cheap probe failed; keep serving cached data and let the
				// next pass try again
				s.log.Warn(syncCtx, "checksum probe failed", "category", cat, "error", err)
				return
			}
			if remote == stored.Get(cat) {
				s.log.Debug(syncCtx, "category unchanged", "category", cat)
				return
			}

			if err := m.Fetch(syncCtx, token); err != nil {
				fail(cat, err)
				return
			}
			s.bus.Publish(events.Event{Kind: events.KindUpdated, Category: cat})
		}(m)
	}

	for _, m := range s.ungated {
		if only != nil && !only[m.Category()] {
			continue
		}
		wg.Add(1)
		go func(m CategoryManager) {
			defer wg.Done()
			if invalid.Load() {
				return
			}
			if err := m.Fetch(syncCtx, token); err != nil {
				fail(m.Category(), err)
				return
			}
			s.bus.Publish(events.Event{Kind: events.KindUpdated, Category: m.Category()})
		}(m)
	}

	wg.Wait()

	if invalid.Load() {
		return common.ErrInvalidToken
	}
	return errors.Join(errs...)
}

// Login authenticates online. When a different account than the previously
// saved one logs in, every trace of the old account is wiped first, the
// shared generic-points cache included.
func (s *Service) Login(ctx context.Context, username, password string) (*models.LoggedInUser, error) {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	user, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	prev, err := s.session.Saved(ctx)
	if err != nil {
		return nil, err
	}
	if prev != nil && prev.UserID != user.UserID {
		s.log.Info(ctx, "account switch, wiping local data", "previous", prev.UserID, "next", user.UserID)
		if err := s.wipeAll(ctx); err != nil {
			return nil, err
		}
	}

	user.IsLoggedIn = true
	if err := s.session.Establish(ctx, user, password); err != nil {
		return nil, err
	}

	// best effort; the session is valid even when the first sync fails
	if err := s.fetchPass(ctx, nil); err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			// a token rejected right after login; treat like any other
			// forced logout
			if lerr := s.logout(ctx, true); lerr != nil {
				return nil, lerr
			}
			s.bus.Publish(events.Event{Kind: events.KindInvalidToken, Err: common.ErrInvalidToken})
			return nil, common.ErrInvalidToken
		}
		s.log.Warn(ctx, "initial sync failed", "error", err)
	}
	return user, nil
}

// OfflineLogin revives the saved session against cached credentials and
// serves whatever data the local store has.
func (s *Service) OfflineLogin(ctx context.Context, username, password string) (*models.LoggedInUser, error) {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	user, err := s.session.OfflineLogin(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.LoadData(ctx); err != nil {
		s.log.Warn(ctx, "loading cached data failed", "error", err)
	}
	return user, nil
}

// Logout ends the session but keeps the session row, the token and the
// cached credentials so the same user can log back in offline. User-bound
// data and queued scans are wiped; the generic-points cache and its
// checksum stay.
func (s *Service) Logout(ctx context.Context) error {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()
	return s.logout(ctx, false)
}

// ForceLogout is the invalid-token escalation: like Logout but the dead
// token is dropped too, and listeners are told to re-authenticate.
func (s *Service) ForceLogout(ctx context.Context) error {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()
	if err := s.logout(ctx, true); err != nil {
		return err
	}
	s.bus.Publish(events.Event{Kind: events.KindInvalidToken, Err: common.ErrInvalidToken})
	return nil
}

func (s *Service) logout(ctx context.Context, clearToken bool) error {
	s.bumpGeneration()

	if err := s.session.SetLoggedOut(ctx, clearToken); err != nil {
		return err
	}
	for _, m := range s.userBound {
		if err := m.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear %s: %w", m.Category(), err)
		}
	}
	if err := s.store.Scans.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear scan queue: %w", err)
	}
	if err := s.checksums.ClearUserData(ctx); err != nil {
		return fmt.Errorf("failed to clear checksums: %w", err)
	}
	s.log.Info(ctx, "logged out", "forced", clearToken)
	return nil
}

// wipeAll removes every trace of the previous account: all categories,
// generic points included, the scan queue, and all metadata rows (checksum
// record, session, credentials).
func (s *Service) wipeAll(ctx context.Context) error {
	s.bumpGeneration()

	for _, m := range s.managers() {
		if err := m.Clear(ctx); err != nil {
			return fmt.Errorf("failed to wipe %s: %w", m.Category(), err)
		}
	}
	if err := s.store.Scans.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to wipe scan queue: %w", err)
	}
	if err := s.store.Metadata.Clear(ctx); err != nil {
		return fmt.Errorf("failed to wipe metadata: %w", err)
	}
	s.session.Forget()
	return nil
}

// Start re-syncs whenever connectivity returns, so server-side changes made
// while the device was offline are picked up without user action. Blocks
// until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	ch := s.monitor.Subscribe()
	for {
		select {
		case online := <-ch:
			if !online || !s.session.IsLoggedIn() {
				continue
			}
			if err := s.FetchNewDataIfNecessary(ctx); err != nil {
				s.log.Warn(ctx, "resync after reconnect failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Events exposes the notification bus.
func (s *Service) Events() *events.Bus {
	return s.bus
}

func (s *Service) generation() context.Context {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.genCtx
}

// bumpGeneration cancels every in-flight fetch started under the previous
// session so late responses cannot be persisted.
func (s *Service) bumpGeneration() {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.genCancel()
	s.genCtx, s.genCancel = context.WithCancel(context.Background())
}
