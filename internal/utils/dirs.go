package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// Application directories, resolved once at startup.
var (
	RootDir    string
	LogsDir    string
	DataDir    string
	StateDir   string
	BackupsDir string
)

// InitDirs resolves and creates the application directory tree under the
// user home directory (or UPGRADE_ANALYZER_HOME when set).
func InitDirs(appName string) error {
	root := os.Getenv("UPGRADE_ANALYZER_HOME")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %v", err)
		}
		root = filepath.Join(home, "."+appName)
	}

	RootDir = root
	LogsDir = filepath.Join(root, "logs")
	DataDir = filepath.Join(root, "data")
	StateDir = filepath.Join(root, "state")
	BackupsDir = filepath.Join(root, "backups")

	for _, dir := range []string{RootDir, LogsDir, DataDir, StateDir, BackupsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}
