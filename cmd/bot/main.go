// Command bot runs the game queue Discord bot.
//
// this binary:
//  1. loads config from environment variables (.env during dev)
//  2. wires the queue registry, cutoff store, Discord session and status API
//  3. runs until SIGINT/SIGTERM
//
// `bot cutoff get|set` reads or writes stored player counts without
// connecting to Discord.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jose-valero/game-queue-bot/internal/cutoff"
	"github.com/jose-valero/game-queue-bot/internal/queue"
	"github.com/jose-valero/game-queue-bot/pkg/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:           "bot",
		Short:         "Rotating game queue bot for Discord",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCommand(ctx), cutoffCommand(ctx))

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "bot: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve the status API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return errors.Wrap(err, "config")
			}
			application, cleanup, err := SetupApplication(ctx, cfg)
			if err != nil {
				return errors.Wrap(err, "setup")
			}
			defer cleanup()
			defer application.Bot.Stop()
			defer func() { _ = application.LoggerFactory.Sync() }()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return application.Bot.Run(gctx) })
			g.Go(func() error { return application.Server.Run(gctx) })
			return g.Wait()
		},
	}
}

func cutoffCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cutoff",
		Short: "Inspect or change the stored player count of a game",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <game>",
			Short: "Print the stored player count",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				return withStore(ctx, func(s cutoff.Store) error {
					game := queue.GameKey(args[0])
					n, ok, err := s.Get(ctx, game)
					if err != nil {
						return err
					}
					if !ok {
						return errors.Errorf("no player count stored for %s", game)
					}
					fmt.Fprintf(c.OutOrStdout(), "%s %d\n", game, n)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <game> <players>",
			Short: "Store the player count used when a queue starts",
			Args:  cobra.ExactArgs(2),
			RunE: func(c *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					return errors.Errorf("players must be a positive integer, got %q", args[1])
				}
				return withStore(ctx, func(s cutoff.Store) error {
					game := queue.GameKey(args[0])
					if err := s.Set(ctx, game, n); err != nil {
						return err
					}
					fmt.Fprintf(c.OutOrStdout(), "%s %d\n", game, n)
					return nil
				})
			},
		},
	)
	return cmd
}

// withStore opens the configured cutoff store for one CLI call.
func withStore(ctx context.Context, fn func(cutoff.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config")
	}
	cfg.LogLevel = "warn"
	store, cleanup, err := SetupCutoffStore(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open cutoff store")
	}
	defer cleanup()
	return fn(store)
}
