package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/letsplay-client/internal/config"
	"github.com/example/letsplay-client/internal/gateway"
	"github.com/example/letsplay-client/internal/session"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			store, err := sessionStore(cfg)
			if err != nil {
				return err
			}

			gw := gateway.New(cfg.APIBaseURL, session.Identity{})
			id, err := gw.Login(context.Background(), email, password)
			if err != nil {
				return err
			}
			if err := store.Save(id); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "signed in as %s <%s>\n", id.Name, id.Email)
			return nil
		},
	}

	c.Flags().StringVar(&email, "email", "", "account email")
	c.Flags().StringVar(&password, "password", "", "account password")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			store, err := sessionStore(cfg)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "signed out")
			return nil
		},
	}
}
