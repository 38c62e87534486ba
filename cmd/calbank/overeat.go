package calbank

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

var overeatCheckDate string

var overeatCmd = &cobra.Command{
	Use:   "overeat",
	Short: "Detect and acknowledge overeating events",
}

var overeatCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run detection against a locked day",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--date", overeatCheckDate); err != nil {
			return err
		}
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			event, err := service.CheckOvereating(sqldb, policy, overeatCheckDate)
			if err != nil {
				return err
			}
			if event == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No overeating event.")
				return nil
			}
			printEvent(cmd, event)
			return nil
		})
	},
}

var overeatPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show the pending overeating event, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			event, err := service.PendingEvent(sqldb)
			if err != nil {
				return err
			}
			if event == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending event.")
				return nil
			}
			printEvent(cmd, event)
			return nil
		})
	},
}

var overeatAckCmd = &cobra.Command{
	Use:   "ack <event-id>",
	Short: "Acknowledge an overeating event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.Acknowledge(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %s\n", args[0])
			return nil
		})
	},
}

var overeatDismissCmd = &cobra.Command{
	Use:   "dismiss <event-id>",
	Short: "Archive an event without a recovery plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DismissEvent(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dismissed %s\n", args[0])
			return nil
		})
	},
}

func printEvent(cmd *cobra.Command, event *model.OvereatingEvent) {
	fmt.Fprintf(cmd.OutOrStdout(), "Event %s\n", event.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Date: %s | excess: %d kcal | severity: %s\n", event.Date, event.ExcessCalories, event.Trigger)
	if event.Acknowledged {
		fmt.Fprintln(cmd.OutOrStdout(), "Acknowledged.")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Acknowledge with: calbank overeat ack %s\n", event.ID)
	}
}

func init() {
	rootCmd.AddCommand(overeatCmd)
	overeatCmd.AddCommand(overeatCheckCmd)
	overeatCmd.AddCommand(overeatPendingCmd)
	overeatCmd.AddCommand(overeatAckCmd)
	overeatCmd.AddCommand(overeatDismissCmd)

	overeatCheckCmd.Flags().StringVar(&overeatCheckDate, "date", "", "Date YYYY-MM-DD (default today)")
}
