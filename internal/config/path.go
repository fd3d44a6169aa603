// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DatabasePath resolves the SQLite database location: the db.path config
// value when set, otherwise ~/.local/share/centsible/centsible.db.
func DatabasePath() string {
	if configured := viper.GetString("db.path"); configured != "" {
		return ExpandPath(configured)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "centsible.db"
	}
	return filepath.Join(home, ".local", "share", "centsible", "centsible.db")
}

// DueSoonDays returns the user's "due soon" window for recurring
// obligations, in days.
func DueSoonDays() int {
	days := viper.GetInt("recurring.due_soon_days")
	if days <= 0 {
		return 7
	}
	return days
}
