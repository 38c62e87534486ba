package calbank

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective detection/recovery policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := resolvePolicy()
		if err != nil {
			return err
		}
		path := policyPath
		if path == "" {
			path, err = app.DefaultPolicyPath()
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Policy file: %s\n", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Excess thresholds: mild >= %d, moderate >= %d, severe >= %d kcal\n",
			policy.MildExcess, policy.ModerateExcess, policy.SevereExcess)
		fmt.Fprintf(cmd.OutOrStdout(), "Safety floor: %d kcal/day\n", policy.SafetyFloor)
		fmt.Fprintf(cmd.OutOrStdout(), "Strategy horizons: quick %dd, moderate %dd, gentle %dd (max %dd)\n",
			policy.QuickDays, policy.ModerateDays, policy.GentleDays, policy.MaxPlanDays)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
