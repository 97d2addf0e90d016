// Package config resolves the gather home directory and loads runtime
// options from its config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetGatherHome returns the gather home directory.
// Priority order:
//  1. GATHER_HOME environment variable (if set)
//  2. ~/.gather under the user's home directory
//
// The directory is created if it doesn't exist.
func GetGatherHome() (string, error) {
	if home := os.Getenv("GATHER_HOME"); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create gather home directory: %w", err)
		}
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}

	gatherHome := filepath.Join(userHome, ".gather")
	if err := os.MkdirAll(gatherHome, 0755); err != nil {
		return "", fmt.Errorf("create gather home directory: %w", err)
	}
	return gatherHome, nil
}

// ProjectsDir returns (and creates) the directory that holds one
// subdirectory per project workspace.
func ProjectsDir(home string) (string, error) {
	dir := filepath.Join(home, "projects")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create projects directory: %w", err)
	}
	return dir, nil
}

// ProjectDir returns the workspace directory for one named project. It does
// not create it; provisioning belongs to the create operation.
func ProjectDir(home, name string) string {
	return filepath.Join(home, "projects", name)
}

// CacheDBPath returns the path of the shared sqlite cache database.
func CacheDBPath(home string) string {
	return filepath.Join(home, "cache.db")
}

// LegacyBlobPath returns the path of the consolidated legacy metadata file
// written by old gather installations.
func LegacyBlobPath(home string) string {
	return filepath.Join(home, "projects.json")
}

// LockPath returns the path of the workspace-wide lock file taken by
// mutating commands.
func LockPath(home string) string {
	return filepath.Join(home, "gather.lock")
}
