package booking

import (
	"errors"
	"time"
)

// ErrInvalidWindow is returned for windows that do not satisfy
// start < end. It is raised locally, before any network call.
var ErrInvalidWindow = errors.New("invalid time window: start must be before end")

// TimeWindow is a half-open interval [Start, End). Both instants carry
// their own location; a booking ending exactly when another starts does
// not overlap it.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window of the given duration starting at start.
func NewWindow(start time.Time, d time.Duration) TimeWindow {
	return TimeWindow{Start: start, End: start.Add(d)}
}

func (w TimeWindow) Validate() error {
	if !w.Start.Before(w.End) {
		return ErrInvalidWindow
	}
	return nil
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps implements the half-open interval test. It is symmetric.
func (w TimeWindow) Overlaps(o TimeWindow) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}
