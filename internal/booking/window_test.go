package booking

import (
	"errors"
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestTimeWindow_Overlaps(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	tests := []struct {
		name string
		a, b TimeWindow
		want bool
	}{
		{"disjoint", TimeWindow{at(10, 0), at(11, 0)}, TimeWindow{at(12, 0), at(13, 0)}, false},
		{"identical", TimeWindow{at(10, 0), at(11, 0)}, TimeWindow{at(10, 0), at(11, 0)}, true},
		{"partial", TimeWindow{at(10, 0), at(11, 0)}, TimeWindow{at(10, 30), at(11, 30)}, true},
		{"contained", TimeWindow{at(10, 0), at(12, 0)}, TimeWindow{at(10, 30), at(11, 0)}, true},
		{"touching is not overlap", TimeWindow{at(10, 0), at(11, 0)}, TimeWindow{at(11, 0), at(12, 0)}, false},
		{"touching other side", TimeWindow{at(11, 0), at(12, 0)}, TimeWindow{at(10, 0), at(11, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Fatalf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			// half-open overlap is symmetric
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Fatalf("b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeWindow_Validate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	if err := (TimeWindow{Start: now, End: now.Add(time.Hour)}).Validate(); err != nil {
		t.Fatalf("expected valid window, got %v", err)
	}
	if err := (TimeWindow{Start: now, End: now}).Validate(); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for empty window, got %v", err)
	}
	if err := (TimeWindow{Start: now.Add(time.Hour), End: now}).Validate(); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for inverted window, got %v", err)
	}
}

func TestNewWindow(t *testing.T) {
	t.Parallel()

	loc := mustLoc(t, "Asia/Kolkata")
	start := time.Date(2025, 6, 12, 18, 0, 0, 0, loc)
	w := NewWindow(start, 2*time.Hour)
	if !w.End.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("unexpected end %v", w.End)
	}
	if w.Duration() != 2*time.Hour {
		t.Fatalf("unexpected duration %v", w.Duration())
	}
	if w.End.Location() != loc {
		t.Fatalf("window end lost its location")
	}
}
