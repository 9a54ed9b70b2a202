package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/example/letsplay-client/internal/chat"
	"github.com/example/letsplay-client/internal/config"
	"github.com/example/letsplay-client/internal/gateway"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var bookingID int64

	c := &cobra.Command{
		Use:   "chat",
		Short: "Join a booking's chat room (reads messages from stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			id := currentIdentity(cfg)
			if !id.Authenticated() {
				return gateway.ErrUnauthenticated
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			gw := newGateway(cfg)
			dialer := chat.NewDialer(cfg.AMQPURL, id, gw)
			ch, err := dialer.Open(ctx, bookingID)
			if err != nil {
				return err
			}
			defer ch.Close()

			history, err := ch.History(ctx)
			if err != nil {
				return err
			}
			for _, m := range history {
				fmt.Fprintf(os.Stdout, "%s: %s\n", m.SenderName, m.Content)
			}

			go func() {
				for m := range ch.Messages() {
					fmt.Fprintf(os.Stdout, "%s: %s\n", m.SenderName, m.Content)
				}
			}()
			go func() {
				<-ctx.Done()
				ch.Close()
				os.Stdin.Close()
			}()

			sc := bufio.NewScanner(os.Stdin)
			for sc.Scan() {
				if err := ch.Send(ctx, sc.Text()); err != nil {
					if errors.Is(err, chat.ErrChannelDisconnected) {
						return fmt.Errorf("chat disconnected; rejoin to keep talking")
					}
					return err
				}
			}
			return nil
		},
	}

	c.Flags().Int64Var(&bookingID, "booking-id", 0, "booking whose room to join")
	_ = c.MarkFlagRequired("booking-id")
	return c
}
