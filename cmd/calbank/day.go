package calbank

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

var dayDate string

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Show everything logged for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--date", dayDate); err != nil {
			return err
		}
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			rec, err := service.DayData(sqldb, dayDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Date: %s\n", rec.Date)
			if rec.LockedTarget != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Locked target: %d kcal\n", *rec.LockedTarget)
			}
			for _, m := range rec.Meals {
				fmt.Fprintf(cmd.OutOrStdout(), "  meal #%d  %s  %d kcal\n", m.ID, m.Name, m.Calories)
			}
			for _, w := range rec.Workouts {
				fmt.Fprintf(cmd.OutOrStdout(), "  workout #%d  %s  %d kcal\n", w.ID, w.WorkoutType, w.CaloriesBurned)
			}
			if rec.SyncedBurned > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  device sync  %d kcal\n", rec.SyncedBurned)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Consumed: %d kcal | Burned: %d kcal | Net: %d kcal\n",
				rec.Consumed, rec.Burned, rec.Consumed-rec.Burned)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dayCmd)
	dayCmd.Flags().StringVar(&dayDate, "date", "", "Date YYYY-MM-DD (default today)")
}
