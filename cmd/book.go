package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/example/letsplay-client/internal/booking"
	"github.com/example/letsplay-client/internal/config"
	"github.com/example/letsplay-client/internal/gateway"
	"github.com/example/letsplay-client/internal/workflow"
	"github.com/spf13/cobra"
)

func newBookCmd() *cobra.Command {
	var (
		venueID    int64
		date       string
		start      string
		hours      int
		timezone   string
		public     bool
		maxPlayers int
	)

	c := &cobra.Command{
		Use:   "book",
		Short: "Book a slot and track it to confirmation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			day, loc, err := parseDay(date, timezone)
			if err != nil {
				return err
			}
			w, err := parseWindow(day, start, hours, loc)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			gw := newGateway(cfg)
			store := newSnapshotStore(cfg)

			// cheap local pre-check; the server still has the last word
			rs, err := loadDaySnapshot(ctx, store, gw, venueID, day)
			if err != nil {
				return err
			}
			switch cl := booking.Classify(w, rs); cl.Status {
			case booking.SlotBooked:
				return fmt.Errorf("slot %s is already booked", start)
			case booking.SlotJoinable:
				return fmt.Errorf("slot %s is a public game; use `letsplay join --booking-id %d`", start, cl.ReservationID)
			}

			wf := workflow.New(gw, workflow.WithPollInterval(cfg.PollInterval))
			if err := wf.Submit(ctx, workflow.CreateIntent{
				VenueID:    venueID,
				Window:     w,
				Public:     public,
				MaxPlayers: maxPlayers,
			}); err != nil {
				return err
			}

			final := trackWorkflow(ctx, wf)
			if ctx.Err() != nil && !final.Terminal() {
				wf.Cancel()
				fmt.Fprintln(os.Stdout, "abandoned; check `letsplay mine` for the outcome")
				return nil
			}
			store.Invalidate(context.Background(), venueID, gateway.DayParam(day))
			return reportOutcome(final)
		},
	}

	c.Flags().Int64Var(&venueID, "venue-id", 0, "ground id")
	c.Flags().StringVar(&date, "date", "", "day YYYY-MM-DD (default today)")
	c.Flags().StringVar(&start, "start", "", "start time HH:MM")
	c.Flags().IntVar(&hours, "hours", 1, "duration in hours")
	c.Flags().StringVar(&timezone, "timezone", "", "venue timezone (default local)")
	c.Flags().BoolVar(&public, "public", false, "open the booking as a public game")
	c.Flags().IntVar(&maxPlayers, "max-players", 1, "capacity for a public game")
	_ = c.MarkFlagRequired("venue-id")
	_ = c.MarkFlagRequired("start")
	return c
}

// trackWorkflow prints phase transitions until the workflow reaches a
// terminal state or ctx is interrupted. The updates channel is lossy,
// so Status() is consulted as the source of truth.
func trackWorkflow(ctx context.Context, wf *workflow.Workflow) workflow.Status {
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()

	last := workflow.Status{Phase: workflow.PhaseIdle}
	report := func(s workflow.Status) {
		if s.Phase != last.Phase {
			fmt.Fprintf(os.Stdout, "status: %s\n", s.Phase)
			last = s
		}
	}

	for {
		select {
		case s := <-wf.Updates():
			report(s)
			if s.Terminal() {
				return s
			}
		case <-tick.C:
			s := wf.Status()
			report(s)
			if s.Terminal() {
				return s
			}
		case <-ctx.Done():
			return wf.Status()
		}
	}
}

func reportOutcome(s workflow.Status) error {
	switch s.Phase {
	case workflow.PhaseConfirmed:
		fmt.Fprintf(os.Stdout, "confirmed booking id=%d\n", s.ReservationID)
		return nil
	case workflow.PhaseFailed:
		return fmt.Errorf("%s", s.Reason)
	default:
		return fmt.Errorf("booking did not finish (status %s)", s.Phase)
	}
}
