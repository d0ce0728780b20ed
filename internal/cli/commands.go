package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arthur-debert/dtsync/internal/version"
	"github.com/arthur-debert/dtsync/pkg/config"
	"github.com/arthur-debert/dtsync/pkg/engine"
	"github.com/arthur-debert/dtsync/pkg/host"
	"github.com/arthur-debert/dtsync/pkg/paths"
	"github.com/arthur-debert/dtsync/pkg/watch"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func newPlanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "plan [GROUP...]",
		Short:             MsgPlanShort,
		ValidArgsFunction: completeGroups(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return opts.fail(cmd, err)
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return opts.fail(cmd, err)
			}
			planned, err := engine.Plan(cmd.Context(), cfg, opts.engineOptions(args))
			if err != nil {
				return opts.fail(cmd, err)
			}
			return r.RenderPlan(planned.Plan, planned.Warnings)
		},
	}
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var (
		initConfig bool
		write      bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Long:  MsgConfigLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initConfig {
				return initConfigFile(cmd, opts, write)
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return opts.fail(cmd, err)
			}
			data, err := toml.Marshal(cfg)
			if err != nil {
				return opts.fail(cmd, err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&initConfig, "init", false, MsgFlagInit)
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	return cmd
}

func initConfigFile(cmd *cobra.Command, opts *globalOptions, write bool) error {
	content := config.GenerateConfigContent()
	if !write {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}

	path := opts.configPath
	if path == "" {
		path = paths.DefaultConfigFile()
	}
	path = paths.ExpandHome(path)
	if _, err := os.Stat(path); err == nil {
		return opts.fail(cmd, fmt.Errorf(MsgErrConfigExist, path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return opts.fail(cmd, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return opts.fail(cmd, err)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, path)
	return err
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:               "watch [GROUP...]",
		Short:             MsgWatchShort,
		ValidArgsFunction: completeGroups(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			cfg, err := opts.loadConfig()
			if err != nil {
				return opts.fail(cmd, err)
			}
			selected, err := cfg.Select(args)
			if err != nil {
				return opts.fail(cmd, err)
			}
			hostname, err := host.Current()
			if err != nil {
				return opts.fail(cmd, err)
			}

			// Item failures are shown in the report and do not stop watching
			if err := runSync(cmd, opts, args); ExitCode(err) == ExitFatal {
				return err
			}

			w, err := watch.New(watch.Config{
				Roots:    watch.RootsFor(selected, hostname),
				Debounce: debounce,
				OnChange: func(context.Context, []string) error {
					err := runSync(cmd, opts, args)
					if IsReported(err) {
						return nil
					}
					return err
				},
			})
			if err != nil {
				return opts.fail(cmd, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), MsgWatching, len(w.Watched()))
			if err := w.Run(ctx); err != nil {
				return opts.fail(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, MsgFlagDebounce)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  MsgVersionLong,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dtsync version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
