package booking

import "time"

type SlotStatus string

const (
	SlotAvailable SlotStatus = "AVAILABLE"
	SlotJoinable  SlotStatus = "JOINABLE"
	SlotBooked    SlotStatus = "BOOKED"
)

// Classification is the derived status of one candidate window against
// a snapshot. ReservationID is set only for joinable slots.
type Classification struct {
	Status        SlotStatus
	ReservationID int64
}

// Classify maps a candidate window to AVAILABLE, JOINABLE or BOOKED
// against the day's reservations. Only the first overlapping
// reservation is consulted: a ground is single-resource, so a valid
// snapshot has at most one reservation covering any instant. Snapshots
// that violate that still classify without failing, the result is just
// whatever the first overlap says.
//
// Pure and cheap; callers run it once per rendered time option.
func Classify(candidate TimeWindow, existing []Reservation) Classification {
	for _, r := range existing {
		if !candidate.Overlaps(r.Window()) {
			continue
		}
		if r.Joinable() {
			return Classification{Status: SlotJoinable, ReservationID: r.ID}
		}
		return Classification{Status: SlotBooked}
	}
	return Classification{Status: SlotAvailable}
}

// Grounds open at 06:00 and take their last booking start at 23:00,
// the hours the booking screen has always rendered.
const (
	GridOpenHour = 6
	GridLastHour = 23
)

// GridSlot is one classified candidate in a day's availability grid.
type GridSlot struct {
	Window TimeWindow
	Classification
}

// DayGrid classifies every hourly start between the opening hours for
// the given date and duration. The date's own location is kept so the
// grid lines up with the venue's local day.
func DayGrid(date time.Time, duration time.Duration, existing []Reservation) []GridSlot {
	year, month, day := date.Date()
	loc := date.Location()

	out := make([]GridSlot, 0, GridLastHour-GridOpenHour+1)
	for h := GridOpenHour; h <= GridLastHour; h++ {
		w := NewWindow(time.Date(year, month, day, h, 0, 0, 0, loc), duration)
		out = append(out, GridSlot{Window: w, Classification: Classify(w, existing)})
	}
	return out
}
