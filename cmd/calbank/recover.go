package calbank

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

var (
	recoverPlanSuggestions []string
	recoverStartStrategy   string
	recoverStartDate       string
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Plan and track recovery from overeating events",
}

var recoverPlanCmd = &cobra.Command{
	Use:   "plan <event-id>",
	Short: "Generate rebalancing options for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			plan, err := service.CreateRecoveryPlan(sqldb, policy, service.PlanInput{
				EventID:     args[0],
				Suggestions: recoverPlanSuggestions,
			})
			if errors.Is(err, service.ErrAlreadyPlanned) {
				// Plans are immutable; show the one already generated.
				plan, err = service.PlanForEvent(sqldb, args[0])
			}
			if err != nil {
				return err
			}
			printPlan(cmd, plan)
			return nil
		})
	},
}

var recoverStartCmd = &cobra.Command{
	Use:   "start <plan-id>",
	Short: "Accept one of a plan's options and start a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		planID, err := parseInt64Arg("plan id", args[0])
		if err != nil {
			return err
		}
		if err := validateDateFlag("--start", recoverStartDate); err != nil {
			return err
		}
		strategy := model.Strategy(strings.ToLower(strings.TrimSpace(recoverStartStrategy)))
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			session, err := service.StartSession(sqldb, policy, planID, strategy, recoverStartDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started %s recovery: %d days from %s\n",
				session.Strategy, session.DurationDays, session.StartDate)
			return nil
		})
	},
}

var recoverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active recovery session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(sqldb *sql.DB, policy service.Policy) error {
			session, err := service.ActiveSession(sqldb)
			if err != nil {
				return err
			}
			if session == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No active recovery session.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session #%d (%s): started %s, %d of %d days done, %d remaining\n",
				session.ID, session.Strategy, session.StartDate, session.DaysCompleted, session.DurationDays, session.DaysRemaining())
			for i, target := range session.DailyTargets {
				fmt.Fprintf(cmd.OutOrStdout(), "  day %d: %d kcal\n", i+1, target)
			}
			return nil
		})
	},
}

var recoverAbandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Abandon the active recovery session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.AbandonSession(sqldb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session abandoned; future days revert to normal targets.")
			return nil
		})
	},
}

var recoverHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List past recovery plans and sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			plans, err := service.RecoveryHistory(sqldb)
			if err != nil {
				return err
			}
			sessions, err := service.ListSessions(sqldb)
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recovery plans yet.")
				return nil
			}
			for _, plan := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "Plan #%d for %s (%d kcal excess, %d options)\n",
					plan.ID, plan.EventDate, plan.Excess, len(plan.Options))
			}
			for _, s := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "Session #%d (%s): %s, %d/%d days\n",
					s.ID, s.Strategy, s.State, s.DaysCompleted, s.DurationDays)
			}
			return nil
		})
	},
}

func printPlan(cmd *cobra.Command, plan *model.RecoveryPlan) {
	fmt.Fprintf(cmd.OutOrStdout(), "Plan #%d for event on %s (excess %d kcal)\n", plan.ID, plan.EventDate, plan.Excess)
	for _, opt := range plan.Options {
		if opt.Strategy == model.StrategyMaintenance {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-11s absorb into this week's allowance over %d days\n",
				opt.Strategy, opt.DurationDays)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-11s %d days, about %d kcal/day less\n",
			opt.Strategy, opt.DurationDays, opt.PerDayReduction)
	}
	for _, s := range plan.Suggestions {
		fmt.Fprintf(cmd.OutOrStdout(), "  tip: %s\n", s)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Start with: calbank recover start %d --strategy <name>\n", plan.ID)
}

func init() {
	rootCmd.AddCommand(recoverCmd)
	recoverCmd.AddCommand(recoverPlanCmd)
	recoverCmd.AddCommand(recoverStartCmd)
	recoverCmd.AddCommand(recoverStatusCmd)
	recoverCmd.AddCommand(recoverAbandonCmd)
	recoverCmd.AddCommand(recoverHistoryCmd)

	recoverPlanCmd.Flags().StringArrayVar(&recoverPlanSuggestions, "suggest", nil, "Attach an activity suggestion (repeatable)")
	recoverStartCmd.Flags().StringVar(&recoverStartStrategy, "strategy", "", "gentle|moderate|quick|maintenance (required)")
	recoverStartCmd.Flags().StringVar(&recoverStartDate, "start", "", "Session start date YYYY-MM-DD (default tomorrow)")
	_ = recoverStartCmd.MarkFlagRequired("strategy")
}
