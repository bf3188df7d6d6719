package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trackline/trackline/internal/api"
	"github.com/trackline/trackline/internal/config"
	"github.com/trackline/trackline/internal/db"
)

// newServeCmd creates the serve command for the API server
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the trackline API server.

The server exposes REST endpoints for tasks, articles, checklists,
projects, daily tasks, and progress reports, all backed by a single
SQLite database.

Example:
  trackline serve              # Start on configured port (default 8080)
  trackline serve --port 3000  # Start on custom port`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				cfg = config.Default()
			}

			if cmd.Flags().Changed("port") {
				cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path, _ = cmd.Flags().GetString("db")
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			store, err := db.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}

			server := api.New(store, cfg, logger)

			fmt.Printf("Starting API server on %s\n", cfg.Server.Addr())
			fmt.Println("Press Ctrl+C to stop")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.Start(ctx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "port to listen on")
	cmd.Flags().String("db", "", "database file path (overrides config)")

	return cmd
}
