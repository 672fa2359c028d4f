package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"umrahtransfer/internal/jobs"
	"umrahtransfer/internal/services"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect or run the scheduled maintenance jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job names and schedules",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// schedules only; nothing runs, so no database is needed
		for _, j := range jobs.Standard(services.BookingService{}, services.DraftService{}) {
			fmt.Fprintf(cmd.OutOrStdout(), "%-26s %s\n", j.Name, j.Spec)
		}
		return nil
	},
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run one job now, e.g. after downtime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, env)
		if err != nil {
			return err
		}
		defer a.Close()

		sched, err := jobs.New(a.loc, jobs.Standard(a.bookings, a.drafts)...)
		if err != nil {
			return err
		}
		return sched.Trigger(ctx, args[0])
	},
}

func init() {
	jobsCmd.AddCommand(jobsListCmd, jobsRunCmd)
}
