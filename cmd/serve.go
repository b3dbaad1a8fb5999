package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/lingopad/internal/app"
	"github.com/Taichi-iskw/lingopad/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP JSON API",
	Long: `Start the HTTP API on the configured host and port. Pending migrations are
applied first unless --no-migrate is given. SIGINT or SIGTERM shuts the server down gracefully.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}

		if host, _ := cmd.Flags().GetString("host"); host != "" {
			cfg.Server.Host = host
		}
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hist, cleanup, err := app.NewHistory(ctx, cfg, app.StoreOptions{Migrate: !noMigrate})
		if err != nil {
			return fmt.Errorf("failed to open translation store: %w", err)
		}
		defer cleanup()

		orchestrator := app.NewOrchestrator(cfg, log)
		srv := server.New(orchestrator, hist, log, server.Options{
			Environment:    cfg.Environment,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})

		return srv.Run(ctx, cfg.Addr())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Listen host (overrides config)")
	serveCmd.Flags().IntP("port", "p", 0, "Listen port (overrides config)")
	serveCmd.Flags().Bool("no-migrate", false, "Skip applying pending migrations on start")
}
