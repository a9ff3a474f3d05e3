// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

// Package plugin installs the engine-extender plugin into a Pattern Lab host.
//
// On every initialization call the installer publishes the plugin's frontend
// descriptor and bundled assets into the host's public directory. On the first
// call for an enabled plugin it also subscribes a callback to the host's
// pattern-iteration-end event; the callback wraps each pattern's template
// engine with the configured extension.
package plugin

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/patternlab/engine-extender/internal/bundle"
	"github.com/patternlab/engine-extender/internal/observability"
	"github.com/patternlab/engine-extender/pkg/patternlab"
)

const tracerName = "github.com/patternlab/engine-extender/internal/plugin"

// DefaultExcludes are bundle paths never published.
var DefaultExcludes = []string{"**/.DS_Store"}

// DefaultWriteRetries is how many times a failed output write is retried.
const DefaultWriteRetries = 2

// Outcome is the result of the registration gate.
type Outcome int

// Gate outcomes.
const (
	// OutcomeSkipped means the plugin is absent from the host config, disabled,
	// or already initialized. Assets were still published.
	OutcomeSkipped Outcome = iota
	// OutcomeRegistered means the event callback was subscribed by this call.
	OutcomeRegistered
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRegistered:
		return "registered"
	default:
		return "unknown"
	}
}

// State is the plugin's initialization state. The host keeps one State per
// plugin instance and passes it to every Init call.
type State struct {
	Initialized bool
}

// Result describes one Init call.
type Result struct {
	Outcome Outcome
	Publish *PublishReport
}

// Installer installs the plugin into a host runtime.
type Installer struct {
	registry *Registry
	bundle   fs.FS
	out      afero.Fs
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
	patterns []string
	excludes []glob.Glob

	writeRetries uint64

	loader     Loader
	loaderRoot string

	extension Extension
}

// Option configures an Installer.
type Option func(*Installer)

// WithBundle replaces the embedded asset bundle. Paths must be rooted at "dist".
func WithBundle(b fs.FS) Option {
	return func(i *Installer) {
		i.bundle = b
	}
}

// WithOutputFs sets the filesystem assets are written to.
func WithOutputFs(out afero.Fs) Option {
	return func(i *Installer) {
		i.out = out
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Installer) {
		i.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(i *Installer) {
		i.metrics = m
	}
}

// WithExcludes replaces the glob patterns of bundle paths that are not published.
func WithExcludes(patterns ...string) Option {
	return func(i *Installer) {
		i.patterns = patterns
	}
}

// WithLoader loads extensions missing from the registry through l, with
// paths resolved against root. Loading happens only when the plugin
// registers for events.
func WithLoader(l Loader, root string) Option {
	return func(i *Installer) {
		i.loader = l
		i.loaderRoot = root
	}
}

// WithWriteRetries sets how many times a failed output write is retried.
func WithWriteRetries(n uint64) Option {
	return func(i *Installer) {
		i.writeRetries = n
	}
}

// New creates an installer resolving extensions from reg.
func New(reg *Registry, opts ...Option) (*Installer, error) {
	if reg == nil {
		return nil, oops.In("plugin").Code(CodeExtensionInvalid).New("extension registry is nil")
	}

	i := &Installer{
		registry: reg,
		bundle:   bundle.FS(),
		out:      afero.NewOsFs(),
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		patterns: DefaultExcludes,

		writeRetries: DefaultWriteRetries,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.metrics == nil {
		i.metrics = observability.NewMetrics()
	}
	i.logger = i.logger.With("plugin", ID)

	for _, p := range i.patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, oops.In("plugin").Code(CodeExcludeInvalid).With("pattern", p).Wrap(err)
		}
		i.excludes = append(i.excludes, g)
	}

	return i, nil
}

// ResolveExtensionPath returns the host's configured extension path.
func ResolveExtensionPath(rt *patternlab.Runtime) (string, error) {
	if rt == nil {
		return "", oops.In("plugin").Code(CodeHostMissing).New("host object not provided")
	}
	if rt.Config == nil || rt.Config.ExtensionPath == "" {
		return "", oops.In("plugin").
			Code(CodeExtensionPathMissing).
			With("key", ConfigKey).
			Errorf("no extension path at config.%s", ConfigKey)
	}
	return rt.Config.ExtensionPath, nil
}

// Init installs the plugin into rt.
//
// Assets are published on every call. The event callback is subscribed only
// when the plugin is enabled in the host config and neither st nor the host
// config marks it initialized; st.Initialized is set once that happens.
// Publication failures are logged and reported in Result, not returned.
func (i *Installer) Init(ctx context.Context, rt *patternlab.Runtime, st *State) (*Result, error) {
	ctx, span := i.tracer.Start(ctx, "plugin.Init")
	defer span.End()

	res, err := i.init(ctx, rt, st)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}

	span.SetAttributes(attribute.String("outcome", res.Outcome.String()))
	i.metrics.InitOutcomes.WithLabelValues(res.Outcome.String()).Inc()
	return res, nil
}

func (i *Installer) init(ctx context.Context, rt *patternlab.Runtime, st *State) (*Result, error) {
	extPath, err := ResolveExtensionPath(rt)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, oops.In("plugin").Code(CodeStateMissing).New("plugin state not provided")
	}

	res := &Result{
		Outcome: OutcomeSkipped,
		Publish: i.publish(ctx, rt),
	}

	if rt.Config.Plugins == nil {
		rt.Config.Plugins = make(map[string]*patternlab.PluginConfig)
	}
	pc := rt.Config.Plugins[ID]
	if pc == nil || !pc.Enabled || pc.Initialized || st.Initialized {
		return res, nil
	}

	ext, err := i.resolveExtension(ctx, extPath)
	if err != nil {
		return res, err
	}
	if rt.Events == nil {
		return res, oops.In("plugin").Code(CodeEventsMissing).New("host runtime has no event bus")
	}

	rt.Events.On(patternlab.EventPatternIterationEnd, i.onPatternIterate)
	i.extension = ext
	st.Initialized = true

	i.logger.InfoContext(ctx, "plugin initialized",
		"extension", extPath,
		"event", patternlab.EventPatternIterationEnd)

	res.Outcome = OutcomeRegistered
	return res, nil
}

// resolveExtension returns the extension registered under path, loading it
// through the configured loader when it is not registered yet.
func (i *Installer) resolveExtension(ctx context.Context, path string) (Extension, error) {
	ext, err := i.registry.Lookup(path)
	if err == nil || i.loader == nil {
		return ext, err
	}
	if err := i.registry.LoadFrom(ctx, i.loader, i.loaderRoot, path); err != nil {
		return nil, err
	}
	return i.registry.Lookup(path)
}

// onPatternIterate replaces each pattern's engine with the extension applied
// to the engine currently installed. Engines wrapped by an earlier event are
// wrapped again.
func (i *Installer) onPatternIterate(ctx context.Context, rt *patternlab.Runtime) (*patternlab.Runtime, error) {
	for _, p := range rt.Patterns {
		if p == nil || p.Engine == nil {
			continue
		}

		wrapped, err := i.extension(p.Engine.Engine)
		if err != nil {
			return rt, oops.In("plugin").
				Code(CodeExtensionFailed).
				With("pattern", p.Name).
				Wrap(err)
		}
		p.Engine.Engine = wrapped
		i.metrics.PatternsWrapped.Inc()
	}

	i.logger.DebugContext(ctx, "wrapped pattern engines", "patterns", len(rt.Patterns))
	return rt, nil
}
