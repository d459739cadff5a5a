// Package events carries the notifications the sync and scan subsystems emit
// toward the UI layer: category updates, sync failures, forced logout, and
// scan-queue activity.
package events

import (
	"sync"

	"github.com/lifeisskill/lisk-go/internal/models"
)

type Kind int

const (
	// KindUpdated means one category's data changed locally.
	KindUpdated Kind = iota
	// KindSyncError means one category failed to sync; siblings continued.
	KindSyncError
	// KindInvalidToken means the server rejected the session token and the
	// user was force-logged-out.
	KindInvalidToken
	// KindScanQueued means a scan could not be delivered and was stored for
	// later replay.
	KindScanQueued
	// KindScanFailed means a scan was rejected terminally and dropped.
	KindScanFailed
)

func (k Kind) String() string {
	switch k {
	case KindUpdated:
		return "updated"
	case KindSyncError:
		return "sync-error"
	case KindInvalidToken:
		return "invalid-token"
	case KindScanQueued:
		return "scan-queued"
	case KindScanFailed:
		return "scan-failed"
	}
	return "unknown"
}

// Event is one notification. Category is set for KindUpdated and
// KindSyncError, Err for the failure kinds, Scan for the scan kinds.
type Event struct {
	Kind     Kind
	Category models.Category
	Err      error
	Scan     *models.ScannedPoint
}

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// that stops draining its channel loses events rather than stalling sync.
type Bus struct {
	mu   sync.Mutex
	subs []chan Event
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a buffered channel receiving all subsequent events.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
