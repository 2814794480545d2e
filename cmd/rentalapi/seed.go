package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/rentcar/rental-api/internal/infrastructure/config"
	"github.com/rentcar/rental-api/internal/infrastructure/db/mongo"
	"github.com/rentcar/rental-api/pkg/logger"
)

const defaultSeedTimeout = 30 * time.Second

type seedConfig struct {
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create indexes and the role reference data",
		Long: `Creates the MongoDB indexes and inserts the CUSTOMER, ADMIN and SUPERADMIN roles.
This command is idempotent - existing roles are left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, sc *seedConfig) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), sc.timeout)
	defer cancel()

	mcfg, err := config.LoadMongo(ctx)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	log := logger.Init(logger.Options{Level: "info", Pretty: true, Output: cmd.ErrOrStderr()})

	client, db, err := connectMongo(ctx, mongo.Config{URI: mcfg.URI, Database: mcfg.Database}, log)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return oops.Code("SEED_FAILED").Wrapf(err, "ensure indexes")
	}

	inserted, err := mongo.NewRoleRepository(db).Seed(ctx, mongo.DefaultRoles)
	if err != nil {
		return oops.Code("SEED_FAILED").Wrapf(err, "seed roles")
	}

	log.Info().Int("inserted", inserted).Int("total", len(mongo.DefaultRoles)).Msg("roles seeded")
	cmd.Printf("seeded %d of %d roles\n", inserted, len(mongo.DefaultRoles))
	return nil
}
