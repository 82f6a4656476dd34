package sweep

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/leasebot/internal/infrastructure/database"
	"github.com/orris-inc/leasebot/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/orris-inc/leasebot/internal/interfaces/http"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one expiry and deduction sweep now",
		Long: `Expire overdue rentals, then charge one day of rent to every active rental,
notifying the admin chat the same way the daily job does.`,
		RunE: run,
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

	container, err := httpRouter.NewContainer(cmd.Context(), database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer container.Shutdown()

	if err := container.RunDeductionSweep(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "deduction sweep completed")
	return nil
}
