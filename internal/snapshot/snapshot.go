// Package snapshot caches the per-(venue, date) reservation lists the
// slot classifier runs against. A snapshot is read-only: a new
// classification pass re-fetches or re-reads, it never patches a cached
// value in place. Optimistic occupancy lives in a separate Overlay.
package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/letsplay-client/internal/booking"
)

// Snapshot is the reservation list for one venue-local calendar day,
// as fetched at one point in time.
type Snapshot struct {
	VenueID      int64                 `json:"venueId"`
	Date         string                `json:"date"` // venue-local YYYY-MM-DD
	Reservations []booking.Reservation `json:"reservations"`
	FetchedAt    time.Time             `json:"fetchedAt"`
}

// Store caches snapshots. Implementations degrade to misses on any
// backend trouble; a cache that cannot answer is just empty.
type Store interface {
	Get(ctx context.Context, venueID int64, date string) (Snapshot, bool)
	Put(ctx context.Context, snap Snapshot)
	Invalidate(ctx context.Context, venueID int64, date string)
}

func key(venueID int64, date string) string {
	return fmt.Sprintf("%d|%s", venueID, date)
}

// Memory is the in-process Store used when no shared cache is
// configured.
type Memory struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, venueID int64, date string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key(venueID, date)]
	if !ok || time.Now().After(e.expiresAt) {
		delete(m.entries, key(venueID, date))
		return Snapshot{}, false
	}
	return e.snap, true
}

func (m *Memory) Put(_ context.Context, snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key(snap.VenueID, snap.Date)] = memoryEntry{snap: snap, expiresAt: time.Now().Add(m.ttl)}
}

func (m *Memory) Invalidate(_ context.Context, venueID int64, date string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key(venueID, date))
}
