package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/noah-isme/kaizen-portal-api/internal/migrations"
	"github.com/noah-isme/kaizen-portal-api/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the embedded PostgreSQL migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			start := time.Now()
			if err := database.Migrate(cmd.Context(), db.DB, migrations.Migrations); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"command":     "migrate up",
				"duration_ms": time.Since(start).Milliseconds(),
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied state of each migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck
			return database.MigrationStatus(cmd.Context(), db.DB, migrations.Migrations)
		},
	})
	return cmd
}

func connectDB(ctx context.Context) (*sqlx.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}
