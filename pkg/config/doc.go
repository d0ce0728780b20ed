// Package config handles configuration management for dtsync.
//
// It defines the in-memory model (global settings plus an ordered list of
// groups), loads it from TOML or YAML files layered over embedded defaults
// and environment variables, resolves each group's effective settings and
// validates the model structurally without touching the filesystem.
package config
