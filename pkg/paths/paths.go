package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dtsync/pkg/errors"
	"mvdan.cc/sh/v3/shell"
)

// Environment variable names
const (
	// EnvDataDir overrides the XDG data directory for dtsync
	EnvDataDir = "DTSYNC_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for dtsync
	EnvConfigDir = "DTSYNC_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for dtsync-specific files
	AppDirName = "dtsync"

	// StagingDirName is the subdirectory of the data dir holding staged copies
	StagingDirName = "staging"

	// ConfigFileName is the default configuration file name
	ConfigFileName = "config.toml"
)

// DataDir returns the dtsync data directory
func DataDir() string {
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		return ExpandHome(dataDir)
	}
	return filepath.Join(xdg.DataHome, AppDirName)
}

// ConfigDir returns the dtsync config directory
func ConfigDir() string {
	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		return ExpandHome(configDir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// DefaultStagingRoot is used when the configuration names no staging root
func DefaultStagingRoot() string {
	return filepath.Join(DataDir(), StagingDirName)
}

// DefaultConfigFile is the configuration file read when none is given
func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// ExpandEnv expands $VAR and ${VAR} references the way a shell does inside
// double quotes. Command substitution is rejected.
func ExpandEnv(s string) (string, error) {
	expanded, err := shell.Expand(s, os.Getenv)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "cannot expand %q", s)
	}
	return expanded, nil
}

// Expand applies ExpandHome and ExpandEnv. Relative results are made
// absolute against the working directory and everything is cleaned.
func Expand(path string) (string, error) {
	expanded, err := ExpandEnv(ExpandHome(path))
	if err != nil {
		return "", err
	}
	// a variable may have produced the ~
	expanded = ExpandHome(expanded)
	if expanded == "" {
		return "", nil
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "cannot make %q absolute", expanded)
	}
	return abs, nil
}
