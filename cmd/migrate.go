package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/lingopad/internal/config"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back database migrations",
	Long:      `Run the embedded migrations against the configured PostgreSQL or SQLite database.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(config.Up), string(config.Down)},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := config.Direction(args[0])

		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		dbConfig, err := cfg.ParseDatabaseConfig()
		if err != nil {
			return err
		}

		if dbConfig.IsSQLite() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			db, err := config.OpenSQLite(ctx, dbConfig.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := config.Migrate(dbConfig, db, direction); err != nil {
				return err
			}
		} else if err := config.Migrate(dbConfig, nil, direction); err != nil {
			return err
		}

		log.WithField("driver", dbConfig.Driver).Infof("Migrations %s complete", direction)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
