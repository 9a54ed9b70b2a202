package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/example/letsplay-client/internal/booking"
	"github.com/example/letsplay-client/internal/config"
	"github.com/example/letsplay-client/internal/gateway"
	"github.com/example/letsplay-client/internal/snapshot"
	"github.com/example/letsplay-client/internal/workflow"
	"github.com/spf13/cobra"
)

func newJoinCmd() *cobra.Command {
	var bookingID int64

	c := &cobra.Command{
		Use:   "join",
		Short: "Take a spot in a public game",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			gw := newGateway(cfg)
			res, err := gw.Fetch(ctx, bookingID)
			if err != nil {
				return err
			}
			if !res.Joinable() {
				return fmt.Errorf("booking %d is not open to join", bookingID)
			}

			// show the seat as taken while the join is in flight; the
			// overlay never touches the fetched snapshot itself
			ov := snapshot.NewOverlay()
			ov.RecordJoin(bookingID)
			for _, r := range ov.Apply([]booking.Reservation{res}) {
				fmt.Fprintf(os.Stdout, "joining %q %s: %d/%d players\n",
					r.GroundName, r.StartTime.Format("Mon 15:04"), r.JoinedPlayers, r.MaxPlayers)
			}

			wf := workflow.New(gw, workflow.WithPollInterval(cfg.PollInterval))
			if err := wf.Submit(ctx, workflow.JoinIntent{ReservationID: bookingID}); err != nil {
				ov.Discard()
				return err
			}

			final := trackWorkflow(ctx, wf)
			if ctx.Err() != nil && !final.Terminal() {
				wf.Cancel()
				ov.Discard()
				fmt.Fprintln(os.Stdout, "abandoned; check `letsplay mine` for the outcome")
				return nil
			}
			if final.Phase != workflow.PhaseConfirmed {
				ov.Discard()
			} else {
				store := newSnapshotStore(cfg)
				store.Invalidate(context.Background(), res.GroundID, gateway.DayParam(res.StartTime))
			}
			return reportOutcome(final)
		},
	}

	c.Flags().Int64Var(&bookingID, "booking-id", 0, "public booking id")
	_ = c.MarkFlagRequired("booking-id")
	return c
}
