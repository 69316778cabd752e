package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dailydash/internal/config"
	"dailydash/internal/db"
	"dailydash/internal/server"
)

var seedFixture string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with the default admin, sources and sample articles",
	Long: `Seeds the admin account, the default news sources and sample
articles. With --fixture, articles are loaded from a YAML file instead
of the built-in samples.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		log := newLogger()

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ctx := context.Background()
		srv := server.New(server.Config{Port: cfg.Port}, database, log)
		if err := srv.Seed(ctx); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}

		fixture := seedFixture
		if fixture == "" {
			fixture = cfg.FixturePath
		}
		if fixture != "" {
			n, err := srv.News.SeedFromFile(ctx, fixture)
			if err != nil {
				return fmt.Errorf("seeding from %s: %w", fixture, err)
			}
			fmt.Printf("Seeded %d articles from %s\n", n, fixture)
		}

		fmt.Println("Database seeded.")
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFixture, "fixture", "", "YAML article fixture to load")
	rootCmd.AddCommand(seedCmd)
}
