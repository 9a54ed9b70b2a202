package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/letsplay-client/internal/config"
	"github.com/spf13/cobra"
)

func newVenuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "Browse bookable grounds",
	}
	cmd.AddCommand(newVenuesListCmd())
	cmd.AddCommand(newVenuesShowCmd())
	return cmd
}

func newVenuesListCmd() *cobra.Command {
	var sport string

	c := &cobra.Command{
		Use:   "list",
		Short: "List grounds, optionally filtered by sport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			gw := newGateway(cfg)
			vs, err := gw.Venues(context.Background(), sport)
			if err != nil {
				return err
			}
			for _, v := range vs {
				fmt.Fprintf(os.Stdout, "id=%d name=%q sport=%s location=%q price=%.2f/hr\n",
					v.ID, v.Name, v.SportType, v.Location, v.PricePerHour)
			}
			return nil
		},
	}

	c.Flags().StringVar(&sport, "sport", "", "sport type filter (e.g. football, badminton)")
	return c
}

func newVenuesShowCmd() *cobra.Command {
	var venueID int64

	c := &cobra.Command{
		Use:   "show",
		Short: "Show one ground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			gw := newGateway(cfg)
			v, err := gw.Venue(context.Background(), venueID)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "id=%d name=%q sport=%s location=%q price=%.2f/hr owner=%q\n",
				v.ID, v.Name, v.SportType, v.Location, v.PricePerHour, v.Owner.Name)
			if v.Description != "" {
				fmt.Fprintln(os.Stdout, v.Description)
			}
			return nil
		},
	}

	c.Flags().Int64Var(&venueID, "venue-id", 0, "ground id")
	_ = c.MarkFlagRequired("venue-id")
	return c
}
