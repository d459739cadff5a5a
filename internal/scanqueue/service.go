// Package scanqueue implements capture and guaranteed delivery of point
// scans. A scan that cannot be delivered immediately is persisted and
// replayed in capture order once the backend is reachable again.
package scanqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/lifeisskill/lisk-go/internal/api"
	"github.com/lifeisskill/lisk-go/internal/common"
	"github.com/lifeisskill/lisk-go/internal/events"
	"github.com/lifeisskill/lisk-go/internal/logging"
	"github.com/lifeisskill/lisk-go/internal/models"
	"github.com/lifeisskill/lisk-go/internal/netwatch"
	"github.com/lifeisskill/lisk-go/internal/repositories/scans"
)

const (
	submitBackoffBase = 500 * time.Millisecond
	submitMaxRetries  = 2
)

// Service accepts freshly scanned points and drains the stored queue.
type Service struct {
	client   api.Client
	repo     scans.Repository
	tokens   TokenSource
	sessions SessionEnder
	monitor  *netwatch.Monitor
	bus      *events.Bus
	log      logging.Logger

	replayMu sync.Mutex // replay is strictly serial
}

// TokenSource resolves the current session token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SessionEnder force-ends the session once the backend rejects the token.
type SessionEnder interface {
	ForceLogout(ctx context.Context) error
}

func NewService(client api.Client, repo scans.Repository, tokens TokenSource, sessions SessionEnder, monitor *netwatch.Monitor, bus *events.Bus, log logging.Logger) *Service {
	return &Service{
		client:   client,
		repo:     repo,
		tokens:   tokens,
		sessions: sessions,
		monitor:  monitor,
		bus:      bus,
		log:      log.With("component", "scanqueue"),
	}
}

// HandleScannedPoint submits a scan, falling back to the durable queue when
// the backend cannot be reached. A scan without a location fix can never be
// accepted by the server, so it is rejected here instead of being queued.
func (s *Service) HandleScannedPoint(ctx context.Context, p *models.ScannedPoint) (models.ScanStatus, error) {
	if p.Location == nil {
		s.bus.Publish(events.Event{Kind: events.KindScanFailed, Scan: p, Err: common.ErrMissingLocation})
		return models.StatusUnknown, common.ErrMissingLocation
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CapturedAt.IsZero() {
		p.CapturedAt = time.Now()
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return models.StatusUnknown, err
	}

	if s.monitor.Online() {
		err := s.submit(ctx, token, p)
		switch {
		case err == nil:
			s.log.Info(ctx, "scan sent", "id", p.ID, "code", p.Code)
			return models.StatusSent, nil
		case errors.Is(err, common.ErrInvalidToken):
			s.endSession(ctx)
			return models.StatusUnknown, err
		case !errors.Is(err, common.ErrUnavailable):
			// the server saw the scan and said no; queueing would only
			// replay the same rejection
			s.bus.Publish(events.Event{Kind: events.KindScanFailed, Scan: p, Err: err})
			return models.StatusUnknown, err
		}
		s.monitor.Check(ctx)
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return models.StatusUnknown, fmt.Errorf("failed to queue scan: %w", err)
	}
	s.bus.Publish(events.Event{Kind: events.KindScanQueued, Scan: p})
	s.log.Info(ctx, "scan queued", "id", p.ID, "code", p.Code)
	return models.StatusQueued, nil
}

// ProcessStoredPoints replays the queue in capture order, one scan at a
// time. A transient failure stops the pass and leaves the remainder queued;
// a terminal server rejection drops that scan and continues.
func (s *Service) ProcessStoredPoints(ctx context.Context) error {
	s.replayMu.Lock()
	defer s.replayMu.Unlock()

	queued, err := s.repo.GetAllOrdered(ctx)
	if err != nil {
		return fmt.Errorf("failed to read scan queue: %w", err)
	}
	if len(queued) == 0 {
		return nil
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}

	for i := range queued {
		p := queued[i]
		err := s.submit(ctx, token, &p)
		switch {
		case err == nil:
			if err := s.repo.DeleteByID(ctx, p.ID); err != nil {
				return fmt.Errorf("failed to dequeue scan %s: %w", p.ID, err)
			}
			s.log.Info(ctx, "queued scan delivered", "id", p.ID, "code", p.Code)
		case errors.Is(err, common.ErrInvalidToken):
			s.endSession(ctx)
			return err
		case errors.Is(err, common.ErrUnavailable):
			s.log.Debug(ctx, "replay interrupted, backend unreachable", "remaining", len(queued)-i)
			return err
		default:
			if err := s.repo.DeleteByID(ctx, p.ID); err != nil {
				return fmt.Errorf("failed to dequeue scan %s: %w", p.ID, err)
			}
			s.bus.Publish(events.Event{Kind: events.KindScanFailed, Scan: &p, Err: err})
			s.log.Warn(ctx, "queued scan rejected", "id", p.ID, "error", err)
		}
	}
	return nil
}

// Pending returns the scans still waiting for delivery, oldest first.
func (s *Service) Pending(ctx context.Context) ([]models.ScannedPoint, error) {
	return s.repo.GetAllOrdered(ctx)
}

// Clear drops the whole queue (account switch).
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

// Start replays the queue whenever connectivity returns. Blocks until ctx
// is cancelled.
func (s *Service) Start(ctx context.Context) {
	ch := s.monitor.Subscribe()
	for {
		select {
		case online := <-ch:
			if !online {
				continue
			}
			if err := s.ProcessStoredPoints(ctx); err != nil {
				s.log.Warn(ctx, "queue replay failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// endSession escalates a rejected token to a forced logout. The forced
// logout drops the queue along with the rest of the session data.
func (s *Service) endSession(ctx context.Context) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.ForceLogout(ctx); err != nil {
		s.log.Error(ctx, "forced logout failed", "error", err)
	}
}

// submit sends one scan, retrying briefly on transient failures.
func (s *Service) submit(ctx context.Context, token string, p *models.ScannedPoint) error {
	backoff := retry.WithMaxRetries(submitMaxRetries, retry.NewExponential(submitBackoffBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.client.SubmitScan(ctx, token, p)
		if errors.Is(err, common.ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}
