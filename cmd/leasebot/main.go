package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/leasebot/internal/interfaces/cli/jobs"
	"github.com/orris-inc/leasebot/internal/interfaces/cli/migrate"
	"github.com/orris-inc/leasebot/internal/interfaces/cli/server"
	"github.com/orris-inc/leasebot/internal/interfaces/cli/sweep"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "leasebot",
		Short:        "Leasebot - rental billing and expiry automation",
		Long:         `Leasebot manages time-boxed rentals: it schedules expiry and reminder jobs, charges daily rent and reports to an admin over Telegram.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		jobs.NewCommand(),
		sweep.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
