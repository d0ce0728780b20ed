// Package paths provides centralized path handling for dtsync.
//
// It handles:
//
//   - XDG directory structure (data, config, state)
//   - Path expansion (~ and $VAR / ${VAR})
//   - Probing whether a missing directory could be created, without creating it
//
// # Environment Variables
//
//   - DTSYNC_DATA_DIR: Override XDG data directory (default: $XDG_DATA_HOME/dtsync)
//   - DTSYNC_CONFIG_DIR: Override XDG config directory (default: $XDG_CONFIG_HOME/dtsync)
//
// # XDG Base Directory Structure
//
//   - Data: $XDG_DATA_HOME/dtsync (the staging tree lives in ./staging)
//   - Config: $XDG_CONFIG_HOME/dtsync (config.toml)
package paths
