package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName     = "calbank"
	dbFileName     = "calbank.db"
	policyFileName = "policy.yaml"
)

func DefaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

// DefaultPolicyPath is where threshold/strategy overrides live. The file
// is optional; a missing file means built-in policy defaults.
func DefaultPolicyPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, policyFileName), nil
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}
