package calbank

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

var (
	workoutDate     string
	workoutCalories int
	workoutDuration int
	workoutListDate string
)

var workoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Log and manage workouts",
}

var workoutAddCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Log a workout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--date", workoutDate); err != nil {
			return err
		}
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			in := service.WorkoutInput{
				Date:           workoutDate,
				WorkoutType:    args[0],
				CaloriesBurned: workoutCalories,
			}
			if workoutDuration > 0 {
				in.DurationMin = &workoutDuration
			}
			id, err := service.LogWorkout(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged workout #%d: %s (%d kcal burned)\n", id, args[0], workoutCalories)
			return nil
		})
	},
}

var workoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workouts for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--date", workoutListDate); err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			workouts, err := service.ListWorkouts(sqldb, workoutListDate)
			if err != nil {
				return err
			}
			if len(workouts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No workouts logged.")
				return nil
			}
			for _, w := range workouts {
				line := fmt.Sprintf("#%d  %s  %d kcal", w.ID, w.WorkoutType, w.CaloriesBurned)
				if w.DurationMin != nil {
					line += fmt.Sprintf("  %d min", *w.DurationMin)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		})
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a logged workout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("workout id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteWorkout(sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted workout #%d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(workoutCmd)
	workoutCmd.AddCommand(workoutAddCmd)
	workoutCmd.AddCommand(workoutListCmd)
	workoutCmd.AddCommand(workoutDeleteCmd)

	workoutAddCmd.Flags().IntVar(&workoutCalories, "calories", 0, "Calories burned (required)")
	workoutAddCmd.Flags().IntVar(&workoutDuration, "duration", 0, "Duration in minutes")
	workoutAddCmd.Flags().StringVar(&workoutDate, "date", "", "Date YYYY-MM-DD (default today)")
	_ = workoutAddCmd.MarkFlagRequired("calories")

	workoutListCmd.Flags().StringVar(&workoutListDate, "date", "", "Date YYYY-MM-DD (default today)")
}
