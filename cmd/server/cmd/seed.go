package cmd

import (
	"context"
	"fmt"
	"time"

	"ourevents/internal/adapters/auth"
	"ourevents/internal/repository/postgres"

	"github.com/spf13/cobra"
)

func newSeedCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply the schema and load demo data",
		Long: `Apply the database schema and load the demo data set:
user@eventapi.com and admin@eventapi.com (password "password"), the default
categories and premises, and a few upcoming events. Rows that already exist are kept,
so the command can be run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts, cmd)
		},
	}
}

func runSeed(ctx context.Context, opts *options, cmd *cobra.Command) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}
	db, err := openDB(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.ApplySchema(ctx, db); err != nil {
		return err
	}
	summary, err := postgres.Seed(ctx, db, auth.NewBcryptHasher(0), time.Now())
	if err != nil {
		return err
	}
	logger.Info("seed complete",
		"users", summary.Users, "categories", summary.Categories,
		"premises", summary.Premises, "events", summary.Events)
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d categories, %d premises, %d events\n",
		summary.Users, summary.Categories, summary.Premises, summary.Events)
	return nil
}
