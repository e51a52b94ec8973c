package main

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/interview-scoring/internal/infrastructure/database"
	"github.com/johnquangdev/interview-scoring/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigrate(cmd, migrate.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (one by default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigrate(cmd, migrate.Down)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	migrateUpCmd.Flags().Int("max", 0, "maximum number of migrations to apply; 0 applies all")
	migrateDownCmd.Flags().Int("max", 1, "maximum number of migrations to roll back; 0 rolls back all")
}

func runMigrate(cmd *cobra.Command, dir migrate.MigrationDirection) error {
	l, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer l.Sync()

	cfg, err := config.Read()
	if err != nil {
		return err
	}
	max, _ := cmd.Flags().GetInt("max")

	db, err := database.NewPostgresDB(cfg, l)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	n, err := database.Migrate(db, dir, max, l)
	if err != nil {
		return err
	}
	fmt.Printf("%d migration(s) applied\n", n)
	return nil
}
