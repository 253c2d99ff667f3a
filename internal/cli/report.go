package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"idlerig/internal/database"
	"idlerig/internal/reporter"
)

func NewReportCommand(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:       "report [day|week|month]",
		Short:     "Summarize miner running and paused time",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "week", "month"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			periodType := "day"
			if len(args) > 0 {
				periodType = args[0]
			}

			db, err := database.Connect(a.cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Initialize(); err != nil {
				return err
			}

			rep := reporter.New(database.NewRepository(db))
			report, err := rep.GenerateReport(periodType)
			if err != nil {
				return err
			}

			if jsonOutput {
				jsonStr, err := reporter.FormatReportJSON(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, jsonStr)
				return nil
			}

			fmt.Fprint(out, reporter.FormatReportText(report))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")

	return cmd
}

func NewClearCommand(a *app) *cobra.Command {
	var (
		yes    bool
		before time.Duration
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete journal data",
		Long: `Delete journal data. With --before only entries older than the given age
are removed, e.g. --before 720h keeps the last 30 days.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if before < 0 {
				return errors.New("--before must be positive")
			}

			if !yes {
				what := "all transition history"
				if before > 0 {
					what = fmt.Sprintf("transition history older than %v", before)
				}
				fmt.Fprintf(out, "This will delete %s. Are you sure? (yes/no): ", what)
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				response = strings.TrimSpace(strings.ToLower(response))
				if response != "yes" && response != "y" {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
			}

			db, err := database.Connect(a.cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Initialize(); err != nil {
				return err
			}

			repo := database.NewRepository(db)

			if before > 0 {
				cutoff := time.Now().Add(-before)
				transitions, err := repo.DeleteOldTransitions(cutoff)
				if err != nil {
					return err
				}
				errorLogs, err := repo.DeleteOldErrorLogs(cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted %d transitions and %d error logs before %s\n",
					transitions, errorLogs, cutoff.Format(time.DateTime))
				return nil
			}

			if err := repo.Clear(); err != nil {
				return err
			}

			fmt.Fprintln(out, "Journal cleared successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().DurationVar(&before, "before", 0, "only delete entries older than this age")

	return cmd
}
