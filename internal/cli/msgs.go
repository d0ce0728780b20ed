package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Sync dotfiles from group source trees into their targets"
	MsgPlanShort       = "Show the resolved sync plan without touching anything"
	MsgConfigShort     = "Print the effective configuration"
	MsgConfigLong      = "Print the configuration after defaults, the config file, environment\nand --set overrides are applied, as TOML.\n\nWith --init, print a commented starter configuration instead."
	MsgWatchShort      = "Sync, then re-sync whenever source files change"
	MsgVersionShort    = "Print version information"
	MsgVersionLong     = "Print detailed version information including commit hash and build date"
	MsgCompletionShort = "Generate shell completion script"

	// Flag descriptions
	MsgFlagConfig   = "Path to the configuration file (default $XDG_CONFIG_HOME/dtsync/config.toml)"
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun   = "Preview changes without executing them"
	MsgFlagJobs     = "Number of items to sync in parallel"
	MsgFlagOutput   = "Output format: auto, term, text, json or yaml"
	MsgFlagSet      = "Override a configuration key (global.method=Copy); repeatable"
	MsgFlagInit     = "Print a starter configuration"
	MsgFlagWrite    = "With --init, write the starter configuration to the config path"
	MsgFlagDebounce = "Quiet period before re-syncing after a change"

	// Status messages
	MsgConfigWritten = "Wrote starter configuration to %s\n"
	MsgWatching      = "Watching %d directories, press Ctrl-C to stop\n"

	// Error messages
	MsgErrLoadConfig  = "failed to load configuration: %w"
	MsgErrBadSet      = "invalid --set %q: expected key=value"
	MsgErrConfigExist = "configuration %s already exists"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)
)
