package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/example/letsplay-client/internal/booking"
	"github.com/example/letsplay-client/internal/config"
	"github.com/example/letsplay-client/internal/gateway"
	"github.com/example/letsplay-client/internal/session"
	"github.com/example/letsplay-client/internal/snapshot"
)

func sessionStore(cfg config.Config) (*session.Store, error) {
	return session.NewStore(cfg.SessionFile, cfg.SessionKey)
}

// currentIdentity loads the stored identity; the zero value means
// signed out, and the gateway rejects authenticated calls with it.
func currentIdentity(cfg config.Config) session.Identity {
	st, err := sessionStore(cfg)
	if err != nil {
		return session.Identity{}
	}
	id, _ := st.Load()
	return id
}

func newGateway(cfg config.Config) *gateway.Client {
	return gateway.New(cfg.APIBaseURL, currentIdentity(cfg))
}

// newSnapshotStore prefers the shared Redis cache when configured and
// reachable, otherwise a process-local one.
func newSnapshotStore(cfg config.Config) snapshot.Store {
	if rdb := snapshot.NewRedisClient(cfg.RedisAddr); rdb != nil {
		return snapshot.NewRedis(rdb, cfg.SnapshotTTL)
	}
	return snapshot.NewMemory(cfg.SnapshotTTL)
}

// loadDaySnapshot serves a venue's day from the cache, fetching and
// caching on a miss.
func loadDaySnapshot(ctx context.Context, st snapshot.Store, gw *gateway.Client, venueID int64, day time.Time) ([]booking.Reservation, error) {
	date := gateway.DayParam(day)
	if snap, ok := st.Get(ctx, venueID, date); ok {
		return snap.Reservations, nil
	}
	rs, err := gw.ListForVenueAndDate(ctx, venueID, day)
	if err != nil {
		return nil, err
	}
	st.Put(ctx, snapshot.Snapshot{
		VenueID:      venueID,
		Date:         date,
		Reservations: rs,
		FetchedAt:    time.Now(),
	})
	return rs, nil
}

// parseDay resolves the --date and --timezone flags. An empty date
// means today; the day is anchored in the venue's timezone so evening
// slots east of Greenwich land on the right calendar day.
func parseDay(date, timezone string) (time.Time, *time.Location, error) {
	loc := time.Local
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("invalid --timezone: %w", err)
		}
		loc = l
	}
	if date == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), loc, nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("invalid --date (want YYYY-MM-DD)")
	}
	return day, loc, nil
}

func parseWindow(day time.Time, start string, hours int, loc *time.Location) (booking.TimeWindow, error) {
	t, err := time.ParseInLocation("15:04", start, loc)
	if err != nil {
		return booking.TimeWindow{}, fmt.Errorf("invalid --start (want HH:MM)")
	}
	begin := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	w := booking.NewWindow(begin, time.Duration(hours)*time.Hour)
	if err := w.Validate(); err != nil {
		return booking.TimeWindow{}, err
	}
	return w, nil
}
