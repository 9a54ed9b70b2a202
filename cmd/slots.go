package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/example/letsplay-client/internal/booking"
	"github.com/example/letsplay-client/internal/config"
	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	var (
		venueID  int64
		date     string
		timezone string
		hours    int
	)

	c := &cobra.Command{
		Use:   "slots",
		Short: "Show a ground's day as available / joinable / booked slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			day, _, err := parseDay(date, timezone)
			if err != nil {
				return err
			}
			if hours < 1 {
				return fmt.Errorf("invalid --hours (want >= 1)")
			}

			ctx := context.Background()
			gw := newGateway(cfg)
			store := newSnapshotStore(cfg)

			rs, err := loadDaySnapshot(ctx, store, gw, venueID, day)
			if err != nil {
				return err
			}

			grid := booking.DayGrid(day, time.Duration(hours)*time.Hour, rs)
			for _, slot := range grid {
				switch slot.Classification.Status {
				case booking.SlotJoinable:
					fmt.Fprintf(os.Stdout, "%s  %-9s  booking=%d\n",
						slot.Window.Start.Format("15:04"), slot.Classification.Status, slot.Classification.ReservationID)
				default:
					fmt.Fprintf(os.Stdout, "%s  %s\n",
						slot.Window.Start.Format("15:04"), slot.Classification.Status)
				}
			}
			return nil
		},
	}

	c.Flags().Int64Var(&venueID, "venue-id", 0, "ground id")
	c.Flags().StringVar(&date, "date", "", "day YYYY-MM-DD (default today)")
	c.Flags().StringVar(&timezone, "timezone", "", "venue timezone (default local)")
	c.Flags().IntVar(&hours, "hours", 1, "slot length in hours")
	_ = c.MarkFlagRequired("venue-id")
	return c
}
