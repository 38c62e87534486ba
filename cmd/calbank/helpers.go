package calbank

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/app"
	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/db"
	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

func withDB(run func(*sql.DB) error) error {
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
	return run(sqldb)
}

// withEngine opens the database, loads the policy, and applies the lazy
// day/week rollover before handing control to the command.
func withEngine(run func(*sql.DB, service.Policy) error) error {
	return withDB(func(sqldb *sql.DB) error {
		policy, err := resolvePolicy()
		if err != nil {
			return err
		}
		if err := service.Rollover(sqldb, policy, today()); err != nil {
			return err
		}
		return run(sqldb, policy)
	})
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}

func resolvePolicy() (service.Policy, error) {
	path := policyPath
	if path == "" {
		var err error
		path, err = app.DefaultPolicyPath()
		if err != nil {
			return service.Policy{}, err
		}
	}
	return service.LoadPolicy(path)
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func validateDateFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("invalid %s %q (expected YYYY-MM-DD)", name, value)
	}
	return nil
}
