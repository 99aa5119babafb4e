package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scorer/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var migrateDatabaseURL string

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig()
	if err != nil {
		return err
	}

	dbURL := migrateDatabaseURL
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := db.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Schema up to date")
	return nil
}
