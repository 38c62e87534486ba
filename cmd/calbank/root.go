package calbank

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	policyPath string
)

var rootCmd = &cobra.Command{
	Use:   "calbank",
	Short: "calbank manages a weekly calorie budget from your terminal",
	Long:  "calbank is a local-first weekly calorie banking tool: it redistributes your remaining weekly allowance across the days left, detects overeating against locked daily targets, and walks you through multi-day recovery plans.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "Path to policy yaml (thresholds, safety floor, strategy horizons)")
}
