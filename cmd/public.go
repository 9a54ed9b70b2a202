package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/letsplay-client/internal/config"
	"github.com/spf13/cobra"
)

func newPublicCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "public",
		Short: "List public games with seats left",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			gw := newGateway(cfg)
			rs, err := gw.ListPublic(context.Background())
			if err != nil {
				return err
			}
			if len(rs) == 0 {
				fmt.Fprintln(os.Stdout, "no public games open right now")
				return nil
			}
			for _, r := range rs {
				fmt.Fprintf(os.Stdout, "id=%d ground=%q %s %s-%s players=%d/%d\n",
					r.ID, r.GroundName,
					r.StartTime.Format("2006-01-02"), r.StartTime.Format("15:04"), r.EndTime.Format("15:04"),
					r.JoinedPlayers, r.MaxPlayers)
			}
			return nil
		},
	}
}
