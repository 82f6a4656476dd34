package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/leasebot/internal/infrastructure/database"
	"github.com/orris-inc/leasebot/internal/infrastructure/migration"
	"github.com/orris-inc/leasebot/internal/interfaces/cli/bootstrap"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  `Apply the schema for users, rentals, payments, Telegram links and scheduled jobs.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Setup(env)
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("running migrations", "driver", cfg.Database.Driver)
	if err := migration.NewManager(log).Migrate(database.Get()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}
