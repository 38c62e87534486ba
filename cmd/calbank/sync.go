package calbank

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

var (
	syncDate     string
	syncCalories int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Record device-synced burned calories for a date",
	Long:  "Stores the active-calorie total reported by a health device for a date. The value replaces any earlier sync for that date; hand-logged workouts stay separate.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--date", syncDate); err != nil {
			return err
		}
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			if err := service.UpdateBurnedCalories(sqldb, syncDate, syncCalories); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d burned kcal\n", syncCalories)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().IntVar(&syncCalories, "calories", 0, "Burned calories reported by the device (required)")
	syncCmd.Flags().StringVar(&syncDate, "date", "", "Date YYYY-MM-DD (default today)")
	_ = syncCmd.MarkFlagRequired("calories")
}
