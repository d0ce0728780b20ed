// Package cli implements the dtsync command line
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/dtsync/internal/version"
	"github.com/arthur-debert/dtsync/pkg/cobrax/topics"
	"github.com/arthur-debert/dtsync/pkg/config"
	"github.com/arthur-debert/dtsync/pkg/engine"
	"github.com/arthur-debert/dtsync/pkg/logging"
	"github.com/arthur-debert/dtsync/pkg/output"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	configPath string
	verbosity  int
	dryRun     bool
	jobs       int
	format     string
	sets       []string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "dtsync [flags] [GROUP...]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts, args)
		},
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: completeGroups(opts),
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", MsgFlagConfig)
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, MsgFlagDryRun)
	flags.IntVarP(&opts.jobs, "jobs", "j", 1, MsgFlagJobs)
	flags.StringVarP(&opts.format, "output", "o", "auto", MsgFlagOutput)
	flags.StringArrayVar(&opts.sets, "set", nil, MsgFlagSet)

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "term", "text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Disable automatic help command (replaced by the topics one)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(newPlanCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	if _, err := topics.Initialize(rootCmd, helpTopics(), topics.Options{
		Renderer: topics.NewGlamourRenderer(isatty.IsTerminal(os.Stdout.Fd())),
	}); err != nil {
		// Topics are embedded; failing to read them is a build problem
		panic(err)
	}

	return rootCmd
}

// loadConfig reads the configuration with --set overrides applied
func (o *globalOptions) loadConfig() (*config.Config, error) {
	overrides, err := parseSets(o.sets)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWith(o.configPath, overrides)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

func (o *globalOptions) engineOptions(groups []string) engine.Options {
	return engine.Options{
		DryRun: o.dryRun,
		Jobs:   o.jobs,
		Groups: groups,
	}
}

func (o *globalOptions) renderer(w io.Writer) (output.Renderer, error) {
	format, err := output.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	return output.NewRenderer(format, w)
}

// fail renders err on stderr and wraps it with the fatal exit code
func (o *globalOptions) fail(cmd *cobra.Command, err error) error {
	r, rerr := o.renderer(cmd.ErrOrStderr())
	if rerr != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	_ = r.RenderError(err)
	return &ExitError{Code: ExitFatal, Err: err, Reported: true}
}

// parseSets turns key=value pairs into koanf overrides
func parseSets(sets []string) (map[string]interface{}, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	overrides := make(map[string]interface{}, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf(MsgErrBadSet, s)
		}
		overrides[key] = value
	}
	return overrides, nil
}

func runSync(cmd *cobra.Command, opts *globalOptions, groups []string) error {
	r, err := opts.renderer(cmd.OutOrStdout())
	if err != nil {
		return opts.fail(cmd, err)
	}
	cfg, err := opts.loadConfig()
	if err != nil {
		return opts.fail(cmd, err)
	}

	report, err := engine.Run(cmd.Context(), cfg, opts.engineOptions(groups))
	if report != nil {
		if rerr := r.RenderReport(report); rerr != nil {
			return &ExitError{Code: ExitFatal, Err: rerr}
		}
	}
	if err != nil {
		return opts.fail(cmd, err)
	}
	if !report.OK() {
		return &ExitError{Code: ExitItemFailed, Reported: true}
	}
	return nil
}

// completeGroups completes positional arguments with configured group names
func completeGroups(opts *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := opts.loadConfig()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var names []string
		for _, g := range cfg.Groups {
			if strings.HasPrefix(g.Name, toComplete) {
				names = append(names, g.Name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
