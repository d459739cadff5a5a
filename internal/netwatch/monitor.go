// Package netwatch tracks backend reachability with a periodic ping and
// notifies subscribers on transitions, so queued scans can be replayed the
// moment connectivity returns.
package netwatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lifeisskill/lisk-go/internal/logging"
)

const pingTimeout = 3 * time.Second

// Pinger is the reachability probe; the api client implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor polls the backend and keeps the latest online/offline verdict.
// It reports transitions only, never repeated same-state notifications.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger

	online atomic.Bool

	mu   sync.Mutex
	subs []chan bool
}

// NewMonitor starts pessimistic: offline until the first successful ping.
func NewMonitor(pinger Pinger, interval time.Duration, log logging.Logger) *Monitor {
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		log:      log.With("component", "netwatch"),
	}
}

// Online returns the last verdict without touching the network.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Subscribe returns a channel receiving the new state on every transition.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 4)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Check probes once and records the verdict, notifying on a transition.
// Safe to call outside the Start loop (e.g. after a failed request).
func (m *Monitor) Check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := m.pinger.Ping(pingCtx)
	cancel()

	now := err == nil
	if m.online.Swap(now) != now {
		if now {
			m.log.Info(ctx, "backend reachable")
		} else {
			m.log.Info(ctx, "backend unreachable", "error", err)
		}
		m.notify(now)
	}
	return now
}

// Start runs the poll loop until ctx is cancelled. The first probe happens
// immediately, not after the first interval.
func (m *Monitor) Start(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) notify(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- online:
		default:
		}
	}
}
