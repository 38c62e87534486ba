package calbank

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/app"
	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local calbank database",
	Long:  "Creates the database and applies schema migrations. Also the reset path when stored state is corrupted: point --db at a fresh file and reconfigure.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := app.EnsureDBDir(path); err != nil {
			return err
		}

		sqldb, err := db.Open(path)
		if err != nil {
			return err
		}
		defer sqldb.Close()

		if err := db.ApplyMigrations(sqldb); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized calbank database at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
