/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alzy/commerce-api/internal/logging"
	"github.com/alzy/commerce-api/internal/mq"
	"github.com/alzy/commerce-api/internal/services"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consumes domain events from the message queue",
	Long: `Consumes user.registered and cart.item_added events from the configured
message queue backend (MQ_BACKEND). Usage:

	apiserver worker
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if queue == nil {
			return errors.New("MQ_BACKEND is none; nothing to consume")
		}
		defer queue.Close()

		err = consumeEvents(ctx, queue, logger)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

// Subscriber is satisfied by *mq.MQ.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler mq.Handler) error
}

func consumeEvents(ctx context.Context, queue Subscriber, logger logging.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	for channel, handler := range eventHandlers(logger) {
		g.Go(func() error {
			logger.Info(ctx, "consuming", "channel", channel)
			if err := queue.Subscribe(ctx, channel, handler); err != nil {
				return fmt.Errorf("subscribe %s: %w", channel, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func eventHandlers(logger logging.Logger) map[string]mq.Handler {
	return map[string]mq.Handler{
		services.EventUserRegistered: func(ctx context.Context, msg mq.Message) error {
			var event services.UserRegistered
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				// Malformed payloads are acknowledged so they are not redelivered forever.
				logger.Error(ctx, "drop malformed event", "channel", services.EventUserRegistered, "message_id", msg.ID, "error", err)
				return nil
			}
			logger.Info(ctx, "user registered", "user_id", event.UserID, "email", event.Email, "occurred_at", event.OccurredAt)
			return nil
		},
		services.EventCartItemAdded: func(ctx context.Context, msg mq.Message) error {
			var event services.CartItemAdded
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				logger.Error(ctx, "drop malformed event", "channel", services.EventCartItemAdded, "message_id", msg.ID, "error", err)
				return nil
			}
			logger.Info(ctx, "cart item added",
				"user_id", event.UserID,
				"product_id", event.ProductID,
				"quantity", event.Quantity,
			)
			return nil
		},
	}
}
