package calbank

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

var weekDate string

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the week's day-by-day targets and totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--date", weekDate); err != nil {
			return err
		}
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			report, err := service.Week(sqldb, policy, weekDate)
			if err != nil {
				return err
			}
			if report == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No weekly goal configured. Run `calbank setup` first.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Week of %s (baseline %d kcal/day)\n", report.WeekStart, report.DailyBaseline)
			for _, day := range report.Days {
				lock := " "
				if day.Locked {
					lock = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s target %4d | in %4d | out %4d | net %4d\n",
					lock, day.Date, day.Target, day.Consumed, day.Burned, day.Net)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Allowance: %d | net consumed: %d | remaining: %d\n",
				report.Allowance, report.Consumed-report.Burned, report.Remaining)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(weekCmd)
	weekCmd.Flags().StringVar(&weekDate, "date", "", "Any date inside the week (default today)")
}
