package calbank

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

var statusDate string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's banking status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--date", statusDate); err != nil {
			return err
		}
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			status, err := service.Bank(sqldb, policy, statusDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Date: %s\n", status.Date)
			if !status.HasGoal {
				fmt.Fprintln(cmd.OutOrStdout(), "No weekly goal configured. Run `calbank setup` first.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Today's target: %d kcal\n", status.TodayTarget)
			fmt.Fprintf(cmd.OutOrStdout(), "Consumed: %d kcal | Burned: %d kcal\n", status.ConsumedToday, status.BurnedToday)
			fmt.Fprintf(cmd.OutOrStdout(), "Safe to eat today: %d kcal\n", status.SafeToEatToday)
			fmt.Fprintf(cmd.OutOrStdout(), "Week: %d consumed, %d burned, %d of %d remaining\n",
				status.WeekConsumed, status.WeekBurned, status.WeekRemaining, status.WeekAllowance)
			if status.DeferredShortfall > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Shortfall deferred to recovery: %d kcal (targets held at the safety floor)\n", status.DeferredShortfall)
			}

			session, err := service.ActiveSession(sqldb)
			if err != nil {
				return err
			}
			if session != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Recovery session (%s): day %d of %d, %d remaining\n",
					session.Strategy, session.DaysCompleted+1, session.DurationDays, session.DaysRemaining())
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusDate, "date", "", "Date YYYY-MM-DD (default today)")
}
