package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/orris-inc/leasebot/internal/infrastructure/database"
	"github.com/orris-inc/leasebot/internal/infrastructure/migration"
	"github.com/orris-inc/leasebot/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/orris-inc/leasebot/internal/interfaces/http"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

const shutdownTimeout = 30 * time.Second

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Start the scheduler, Telegram bot and admin API",
		Long: `Start the leasebot process: restore persisted jobs, start the scheduler,
poll Telegram for admin commands and serve the admin HTTP API.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "Migrate the database schema on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Setup(env)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	log.Infow("starting leasebot",
		"mode", cfg.Server.Mode,
		"timezone", cfg.Server.Timezone,
		"job_store", cfg.Scheduler.JobStore,
		"telegram", cfg.Telegram.Enabled)

	if autoMigrate {
		if err := migration.NewManager(log).Migrate(database.Get()); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := httpRouter.NewContainer(ctx, database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer container.Shutdown()

	report, err := container.Scheduler().Reload(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore scheduled jobs: %w", err)
	}
	log.Infow("scheduled jobs restored",
		"restored", report.Restored,
		"discarded", report.Discarded,
		"invalid", report.Invalid,
		"bootstrapped", report.Bootstrapped,
		"catch_up", report.CatchUp)
	container.Scheduler().Start()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("admin API listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	if bot := container.Bot(); bot != nil {
		g.Go(func() error {
			return bot.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down")
		return shutdownServer(srv, log)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Infow("leasebot exited gracefully")
	return nil
}

func shutdownServer(srv *http.Server, log logger.Interface) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}
	return nil
}
