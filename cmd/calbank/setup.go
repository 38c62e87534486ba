package calbank

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

var (
	setupCalories       int
	setupSex            string
	setupBirthDate      string
	setupHeightCM       float64
	setupWeightKG       float64
	setupActivity       string
	setupTargetWeightKG float64
	setupTargetDate     string
	setupStartDate      string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the weekly calorie goal",
	Long: `Configures the weekly goal either directly (--calories) or by deriving a
daily baseline from a body profile via Mifflin-St Jeor TDEE. Starting
mid-week prorates the current week's allowance to the days remaining;
future weeks always get the full 7-day allowance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDateFlag("--start", setupStartDate); err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			baseline := setupCalories
			deficit := 0

			if baseline == 0 {
				profile := model.Profile{
					Sex:            setupSex,
					BirthDate:      setupBirthDate,
					HeightCM:       setupHeightCM,
					WeightKG:       setupWeightKG,
					ActivityLevel:  setupActivity,
					TargetWeightKG: setupTargetWeightKG,
					TargetDate:     setupTargetDate,
				}
				// Flags not given fall back to the stored profile, so a
				// weight check-in is just `setup --weight-kg 88`.
				stored, err := service.LoadProfile(sqldb)
				if err != nil {
					return err
				}
				if stored != nil {
					if profile.Sex == "" {
						profile.Sex = stored.Sex
					}
					if profile.BirthDate == "" {
						profile.BirthDate = stored.BirthDate
					}
					if profile.HeightCM == 0 {
						profile.HeightCM = stored.HeightCM
					}
					if profile.WeightKG == 0 {
						profile.WeightKG = stored.WeightKG
					}
					if profile.ActivityLevel == "" {
						profile.ActivityLevel = stored.ActivityLevel
					}
					if profile.TargetWeightKG == 0 {
						profile.TargetWeightKG = stored.TargetWeightKG
					}
					if profile.TargetDate == "" {
						profile.TargetDate = stored.TargetDate
					}
				}
				computed, err := service.ComputeBaseline(profile, time.Now())
				if err != nil {
					return fmt.Errorf("derive baseline (or pass --calories directly): %w", err)
				}
				if err := service.SaveProfile(sqldb, profile); err != nil {
					return err
				}
				baseline = computed.DailyBudget
				deficit = computed.DailyDeficit
				fmt.Fprintf(cmd.OutOrStdout(), "BMR: %d kcal | TDEE: %d kcal | pace: %.2f kg/week\n",
					computed.BMR, computed.TDEE, computed.PaceKgPerWk)
			}

			goal, err := service.CreateWeeklyGoal(sqldb, service.CreateGoalInput{
				DailyBaseline: baseline,
				DeficitTarget: deficit,
				StartDate:     setupStartDate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Daily baseline: %d kcal\n", goal.DailyBaseline)
			fmt.Fprintf(cmd.OutOrStdout(), "Week of %s: %d kcal allowance (full week %d)\n",
				goal.WeekStart, goal.CurrentWeekAllowance, goal.WeeklyAllowance)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
	setupCmd.Flags().IntVar(&setupCalories, "calories", 0, "Daily calorie baseline (skips TDEE derivation)")
	setupCmd.Flags().StringVar(&setupSex, "sex", "", "male or female")
	setupCmd.Flags().StringVar(&setupBirthDate, "birth-date", "", "Birth date YYYY-MM-DD")
	setupCmd.Flags().Float64Var(&setupHeightCM, "height-cm", 0, "Height in cm")
	setupCmd.Flags().Float64Var(&setupWeightKG, "weight-kg", 0, "Current weight in kg")
	setupCmd.Flags().StringVar(&setupActivity, "activity", "", "Activity level: sedentary|light|moderate|active|very_active")
	setupCmd.Flags().Float64Var(&setupTargetWeightKG, "target-weight-kg", 0, "Target weight in kg")
	setupCmd.Flags().StringVar(&setupTargetDate, "target-date", "", "Target date YYYY-MM-DD")
	setupCmd.Flags().StringVar(&setupStartDate, "start", "", "Goal start date YYYY-MM-DD (default today)")
}
