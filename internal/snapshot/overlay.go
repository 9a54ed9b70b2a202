package snapshot

import (
	"sync"

	"github.com/example/letsplay-client/internal/booking"
)

// Overlay records optimistic occupancy increments the server has not
// confirmed yet. It is applied when reading a snapshot and discarded
// wholesale on refresh or conflict; the cached snapshot itself is never
// mutated, so local guesses can never desynchronize it from the
// authoritative counts.
type Overlay struct {
	mu    sync.Mutex
	joins map[int64]int
}

func NewOverlay() *Overlay {
	return &Overlay{joins: make(map[int64]int)}
}

// RecordJoin notes one optimistic seat taken on a reservation.
func (o *Overlay) RecordJoin(reservationID int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.joins[reservationID]++
}

// Discard drops every optimistic increment, typically right before a
// fresh snapshot fetch or after a Conflict response.
func (o *Overlay) Discard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.joins = make(map[int64]int)
}

// Apply returns a copy of rs with the optimistic increments folded in,
// capped at each reservation's capacity. The input is left untouched.
func (o *Overlay) Apply(rs []booking.Reservation) []booking.Reservation {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]booking.Reservation, len(rs))
	copy(out, rs)
	if len(o.joins) == 0 {
		return out
	}
	for i := range out {
		extra, ok := o.joins[out[i].ID]
		if !ok {
			continue
		}
		joined := out[i].JoinedPlayers
		if joined < 1 {
			joined = 1
		}
		joined += extra
		if max := out[i].MaxPlayers; max >= 1 && joined > max {
			joined = max
		}
		out[i].JoinedPlayers = joined
	}
	return out
}
