package main

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/officeql/officeql/internal/config"
	"github.com/officeql/officeql/internal/migrations"
	"github.com/officeql/officeql/internal/observability"
	"github.com/officeql/officeql/internal/seed"
)

func main() {
	_ = godotenv.Load()

	opts := seed.DefaultOptions()
	var dbPath string
	var skipMigrations bool
	var reset bool

	root := &cobra.Command{
		Use:          "officeql-seed",
		Short:        "Create the office schema and fill it with mock data",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv("officeql-seed")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}
			logger := observability.NewLogger(cfg, os.Stderr)

			dsn := cfg.Database.Path + "?" + url.Values{"_foreign_keys": {"on"}}.Encode()
			db, err := sql.Open("sqlite3", dsn)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			ctx := cmd.Context()
			runner := migrations.NewRunner()
			if reset {
				// Large step count rolls everything back.
				rolled, err := runner.Down(ctx, db, 1<<30)
				if err != nil {
					return fmt.Errorf("roll back schema: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", rolled)
			}
			if !skipMigrations {
				applied, err := runner.Up(ctx, db, 0)
				if err != nil {
					return fmt.Errorf("apply migrations: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			}

			started := time.Now()
			summary, err := seed.NewService(opts, logger).Run(ctx, db)
			if err != nil {
				return fmt.Errorf("seed data: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"seeded %s in %s: %d employees, %d customers, %d products, %d orders, %d order items\n",
				cfg.Database.Path, time.Since(started).Round(time.Millisecond),
				summary.Employees, summary.Customers, summary.Products, summary.Orders, summary.OrderItems,
			)
			return nil
		},
	}

	root.Flags().StringVar(&dbPath, "db", "", "SQLite database path (defaults to OFFICEQL_DB_PATH)")
	root.Flags().IntVar(&opts.Employees, "employees", opts.Employees, "number of employees to generate")
	root.Flags().IntVar(&opts.Customers, "customers", opts.Customers, "number of customers to generate")
	root.Flags().IntVar(&opts.Products, "products", opts.Products, "number of products to generate")
	root.Flags().IntVar(&opts.Orders, "orders", opts.Orders, "number of orders to generate")
	root.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "random seed; the same seed reproduces the same data")
	root.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "assume the schema already exists")
	root.Flags().BoolVar(&reset, "reset", false, "drop and recreate the office schema before seeding")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "officeql-seed: %v\n", err)
		os.Exit(1)
	}
}
