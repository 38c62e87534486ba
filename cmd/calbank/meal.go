package calbank

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

var (
	mealDate     string
	mealCalories int
	mealListDate string
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log and manage meals",
}

var mealAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Log a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--date", mealDate); err != nil {
			return err
		}
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			id, err := service.LogMeal(sqldb, service.MealInput{
				Date:     mealDate,
				Name:     args[0],
				Calories: mealCalories,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged meal #%d: %s (%d kcal)\n", id, args[0], mealCalories)

			status, err := service.Bank(sqldb, policy, mealDate)
			if err != nil {
				return err
			}
			if status.HasGoal {
				fmt.Fprintf(cmd.OutOrStdout(), "Safe to eat today: %d kcal\n", status.SafeToEatToday)
			}
			return nil
		})
	},
}

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meals for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--date", mealListDate); err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			meals, err := service.ListMeals(sqldb, mealListDate)
			if err != nil {
				return err
			}
			if len(meals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No meals logged.")
				return nil
			}
			total := 0
			for _, m := range meals {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d  %s  %d kcal\n", m.ID, m.Name, m.Calories)
				total += m.Calories
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d kcal\n", total)
			return nil
		})
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a logged meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteMeal(sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meal #%d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd)
	mealCmd.AddCommand(mealListCmd)
	mealCmd.AddCommand(mealDeleteCmd)

	mealAddCmd.Flags().IntVar(&mealCalories, "calories", 0, "Calories (required)")
	mealAddCmd.Flags().StringVar(&mealDate, "date", "", "Date YYYY-MM-DD (default today)")
	_ = mealAddCmd.MarkFlagRequired("calories")

	mealListCmd.Flags().StringVar(&mealListDate, "date", "", "Date YYYY-MM-DD (default today)")
}
