package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/letsplay-client/internal/config"
	"github.com/spf13/cobra"
)

func newMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			gw := newGateway(cfg)
			rs, err := gw.MyBookings(context.Background())
			if err != nil {
				return err
			}
			for _, r := range rs {
				visibility := "private"
				if r.IsPublic {
					visibility = fmt.Sprintf("public %d/%d", r.JoinedPlayers, r.MaxPlayers)
				}
				fmt.Fprintf(os.Stdout, "id=%d ground=%q %s %s-%s status=%s %s\n",
					r.ID, r.GroundName,
					r.StartTime.Format("2006-01-02"), r.StartTime.Format("15:04"), r.EndTime.Format("15:04"),
					r.Status, visibility)
			}
			return nil
		},
	}
}
