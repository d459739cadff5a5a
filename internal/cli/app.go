// Package cli is the interactive terminal frontend: a small REPL over the
// sync service, the per-category managers, and the scan queue.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/lifeisskill/lisk-go/internal/api"
	"github.com/lifeisskill/lisk-go/internal/config"
	"github.com/lifeisskill/lisk-go/internal/events"
	"github.com/lifeisskill/lisk-go/internal/logging"
	"github.com/lifeisskill/lisk-go/internal/managers"
	"github.com/lifeisskill/lisk-go/internal/netwatch"
	"github.com/lifeisskill/lisk-go/internal/scanqueue"
	"github.com/lifeisskill/lisk-go/internal/storage"
	"github.com/lifeisskill/lisk-go/internal/sync"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	store   *storage.Repositories
	service *sync.Service
	scans   *scanqueue.Service
	monitor *netwatch.Monitor

	session       *managers.SessionManager
	userPoints    *managers.UserPointsManager
	genericPoints *managers.GenericPointsManager
	rank          *managers.UserRankManager
	categories    *managers.UserCategoryManager

	reader *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	store, err := storage.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	client := api.NewHTTPClient(cfg.APIBaseURL, cfg.APIKey, cfg.AppVersion, cfg.RequestTimeout)

	session := managers.NewSessionManager(store, log)
	m := sync.Managers{
		Session:       session,
		UserPoints:    managers.NewUserPointsManager(client, store, session, log),
		GenericPoints: managers.NewGenericPointsManager(client, store, session, log),
		Rank:          managers.NewUserRankManager(client, store, session, log),
		Categories:    managers.NewUserCategoryManager(client, store, session, log),
	}

	monitor := netwatch.NewMonitor(client, cfg.OnlineCheckInterval, log)
	bus := events.NewBus()
	service := sync.NewService(client, store, m, monitor, bus, log)

	return &App{
		config:        cfg,
		store:         store,
		service:       service,
		scans:         scanqueue.NewService(client, store.Scans, session, service, monitor, bus, log),
		monitor:       monitor,
		session:       session,
		userPoints:    m.UserPoints,
		genericPoints: m.GenericPoints,
		rank:          m.Rank,
		categories:    m.Categories,
		reader:        bufio.NewReader(os.Stdin),
	}, nil
}

// Run loads cached data, starts the background loops, and hands control to
// the REPL. Returns when the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()

	if err := a.service.LoadData(ctx); err != nil {
		return err
	}

	go a.monitor.Start(ctx)
	go a.service.Start(ctx)
	go a.scans.Start(ctx)
	go a.printEvents(ctx)

	a.Root(ctx)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsLoggedIn()
}

// printEvents surfaces background activity on the terminal.
func (a *App) printEvents(ctx context.Context) {
	ch := a.service.Events().Subscribe()
	for {
		select {
		case e := <-ch:
			switch e.Kind {
			case events.KindInvalidToken:
				printlnFn("Session expired, please log in again.")
			case events.KindSyncError:
				printlnFn("Sync of", string(e.Category), "failed:", e.Err)
			case events.KindScanQueued:
				printlnFn("Scan", e.Scan.Code, "queued for delivery.")
			case events.KindScanFailed:
				printlnFn("Scan", e.Scan.Code, "rejected:", e.Err)
			}
		case <-ctx.Done():
			return
		}
	}
}
