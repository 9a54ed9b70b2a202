package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/letsplay-client/internal/config"
	"github.com/example/letsplay-client/internal/gateway"
	"github.com/spf13/cobra"
)

func newNotificationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notifications",
		Short: "List your booking and join notices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			id := currentIdentity(cfg)
			if !id.Authenticated() {
				return gateway.ErrUnauthenticated
			}
			gw := newGateway(cfg)
			ns, err := gw.Notifications(context.Background(), id.UserID)
			if err != nil {
				return err
			}
			if len(ns) == 0 {
				fmt.Fprintln(os.Stdout, "no notifications")
				return nil
			}
			for _, n := range ns {
				if n.BookingID != 0 {
					fmt.Fprintf(os.Stdout, "[%s] %s (booking %d)\n", n.CreatedAt, n.Message, n.BookingID)
					continue
				}
				fmt.Fprintf(os.Stdout, "[%s] %s\n", n.CreatedAt, n.Message)
			}
			return nil
		},
	}
}
