package calbank

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

var lockDate string

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Close a day and freeze its calorie target",
	Long:  "Snapshots the day's live target as its locked target. Elapsed days lock automatically on rollover; this closes a day explicitly (eg before midnight). A locked day is immune to later redistribution and becomes eligible for overeating detection.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--date", lockDate); err != nil {
			return err
		}
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			target, err := service.LockDay(sqldb, policy, lockDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Locked target: %d kcal\n", target)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(lockCmd)
	lockCmd.Flags().StringVar(&lockDate, "date", "", "Date YYYY-MM-DD (default today)")
}
