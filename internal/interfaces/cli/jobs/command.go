package jobs

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/infrastructure/cache"
	"github.com/orris-inc/leasebot/internal/infrastructure/database"
	"github.com/orris-inc/leasebot/internal/infrastructure/jobstore"
	"github.com/orris-inc/leasebot/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect persisted scheduler jobs",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (development, test, production)")
	cmd.AddCommand(newListCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs in the configured job store",
		Long:  `List the job records a restarted process would restore, in the business timezone.`,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Setup(env)
	if err != nil {
		return err
	}
	defer database.Close()

	var store job.Store
	if cfg.Scheduler.JobStore == "redis" {
		client, err := cache.NewRedisClient(cmd.Context(), cfg.Redis, log.Named("redis"))
		if err != nil {
			return err
		}
		defer client.Close()
		store = jobstore.NewRedisStore(client, cfg.Scheduler.KeyPrefix, log.Named("jobstore"))
	} else {
		store = jobstore.NewDBStore(database.Get(), log.Named("jobstore"))
	}

	records, err := store.LoadAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load jobs: %w", err)
	}
	return printRecords(cmd.OutOrStdout(), records, biztime.Location())
}

// printRecords writes one row per record, one-shot jobs first by fire time.
func printRecords(w io.Writer, records []job.Record, loc *time.Location) error {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Trigger, records[j].Trigger
		if a.IsOneShot() != b.IsOneShot() {
			return a.IsOneShot()
		}
		if a.IsOneShot() && !a.RunAt.Equal(b.RunAt) {
			return a.RunAt.Before(b.RunAt)
		}
		return records[i].JobID < records[j].JobID
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB ID\tCALLBACK\tCATEGORY\tTRIGGER\tARGS")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			rec.JobID, rec.CallbackName, rec.Category, formatTrigger(rec.Trigger, loc), formatArgs(rec.Args))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d job(s)\n", len(records))
	return err
}

func formatTrigger(t job.Trigger, loc *time.Location) string {
	if t.IsOneShot() {
		return "at " + t.RunAt.In(loc).Format("2006-01-02 15:04:05 MST")
	}
	return t.String()
}

func formatArgs(args []uint64) string {
	if len(args) == 0 {
		return "-"
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, ",")
}
