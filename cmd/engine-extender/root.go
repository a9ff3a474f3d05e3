// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package main

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/patternlab/engine-extender/internal/config"
	"github.com/patternlab/engine-extender/internal/logging"
	"github.com/patternlab/engine-extender/internal/observability"
	"github.com/patternlab/engine-extender/internal/plugin"
	pluginlua "github.com/patternlab/engine-extender/internal/plugin/lua"
	"github.com/patternlab/engine-extender/pkg/errutil"
	"github.com/patternlab/engine-extender/pkg/patternlab"
)

const serviceName = "engine-extender"

// Deps contains injectable dependencies for the commands.
// Nil fields use their default implementations.
type Deps struct {
	// Fs is the project filesystem.
	// Default: afero.NewOsFs
	Fs afero.Fs

	// Bundle replaces the embedded asset bundle.
	// Default: bundle.FS
	Bundle fs.FS
}

// rootOptions holds the global flags and state shared by subcommands.
type rootOptions struct {
	configFile  string
	root        string
	logFormat   string
	logLevel    string
	metricsFile string

	deps    *Deps
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRootCmd creates the root command for the engine-extender CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithDeps(nil)
}

func newRootCmdWithDeps(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = &Deps{}
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}

	opts := &rootOptions{
		deps:    deps,
		metrics: observability.NewMetrics(),
	}

	cmd := &cobra.Command{
		Use:   "engine-extender",
		Short: "Pattern Lab template engine extender",
		Long: `engine-extender installs the engine extender plugin into a Pattern Lab
project: it publishes the plugin's frontend assets and wraps every pattern's
template engine with a Lua extension once pattern iteration ends.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.Setup(logging.Options{
				Service: serviceName,
				Version: version,
				Format:  opts.logFormat,
				Level:   opts.logLevel,
				Writer:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return oops.In("cli").Hint("failed to set up logging").Wrap(err)
			}
			opts.logger = logger
			slog.SetDefault(logger)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.metricsFile == "" {
				return nil
			}
			return opts.metrics.WriteTextfile(opts.metricsFile)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Pattern Lab config file (YAML)")
	flags.StringVar(&opts.root, "root", ".", "project root that relative paths resolve against")
	flags.StringVar(&opts.logFormat, "log-format", logging.FormatJSON, "log format (json or text)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	config.RegisterFlags(flags)

	cmd.AddCommand(newInstallCmd(opts))
	cmd.AddCommand(newRenderCmd(opts))
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig loads the host config and resolves its paths against --root.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*patternlab.Config, error) {
	cfg, err := config.Load(o.configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	cfg.Paths.Public.Root = o.resolve(cfg.Paths.Public.Root)
	cfg.Paths.Source.Patterns = o.resolve(cfg.Paths.Source.Patterns)
	return cfg, nil
}

func (o *rootOptions) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.root, p)
}

// session is an installed plugin ready for events.
type session struct {
	rt     *patternlab.Runtime
	result *plugin.Result
	loader *pluginlua.Loader
}

func (s *session) Close() error {
	return s.loader.Close()
}

// install loads the config and initializes the plugin against a fresh
// runtime. The Lua extension is loaded only if the plugin registers.
func (o *rootOptions) install(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	loader := pluginlua.NewLoader(
		pluginlua.WithFs(o.deps.Fs),
		pluginlua.WithLogger(o.logger),
	)
	s := &session{
		rt: &patternlab.Runtime{
			Config: cfg,
			Events: patternlab.NewEvents(patternlab.WithLogger(o.logger)),
		},
		loader: loader,
	}

	reg := plugin.NewRegistry(plugin.WithRegistryLogger(o.logger))
	installerOpts := []plugin.Option{
		plugin.WithLoader(loader, o.root),
		plugin.WithOutputFs(o.deps.Fs),
		plugin.WithLogger(o.logger),
		plugin.WithMetrics(o.metrics),
	}
	if o.deps.Bundle != nil {
		installerOpts = append(installerOpts, plugin.WithBundle(o.deps.Bundle))
	}
	installer, err := plugin.New(reg, installerOpts...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.result, err = installer.Init(ctx, s.rt, &plugin.State{})
	if err != nil {
		_ = s.Close()
		errutil.LogError(ctx, o.logger, "plugin initialization failed", err)
		return nil, err
	}
	return s, nil
}
