// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package plugin

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/samber/oops"

	"github.com/patternlab/engine-extender/pkg/engine"
	"github.com/patternlab/engine-extender/pkg/errutil"
)

// Extension wraps a template engine with additional behavior.
type Extension func(engine.Engine) (engine.Engine, error)

// Loader turns an extension source file into an Extension.
type Loader interface {
	Load(ctx context.Context, path string) (Extension, error)
}

// Registry maps extension paths, as named by the host's extensionPath
// setting, to extension functions registered up front.
type Registry struct {
	mu     sync.RWMutex
	exts   map[string]Extension
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger load failures are reported to.
// Defaults to slog.Default().
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		exts:   make(map[string]Extension),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds ext under path, replacing any previous registration.
func (r *Registry) Register(path string, ext Extension) error {
	if path == "" {
		return oops.In("registry").Code(CodeExtensionInvalid).New("extension path is empty")
	}
	if ext == nil {
		return oops.In("registry").Code(CodeExtensionInvalid).With("path", path).New("extension is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.exts[path] = ext
	return nil
}

// Lookup returns the extension registered under path.
func (r *Registry) Lookup(path string) (Extension, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext, ok := r.exts[path]
	if !ok {
		return nil, oops.In("registry").
			Code(CodeExtensionNotRegistered).
			With("path", path).
			Hint("register the extension before initializing the plugin").
			Errorf("no extension registered for %q", path)
	}
	return ext, nil
}

// Paths returns the registered paths in sorted order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.exts))
	for p := range r.exts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// LoadFrom loads the extension at root/path through l and registers it under
// path. A loader that yields no extension is an error.
func (r *Registry) LoadFrom(ctx context.Context, l Loader, root, path string) error {
	full := filepath.Join(root, filepath.FromSlash(path))

	ext, err := l.Load(ctx, full)
	if err == nil && ext == nil {
		err = oops.In("registry").Code(CodeExtensionEmpty).With("file", full).New("loader returned no extension")
	}
	if err != nil {
		errutil.LogError(ctx, r.logger, "extension failed to load", err, "path", path)
		return oops.In("registry").With("path", path).Wrap(err)
	}

	return r.Register(path, ext)
}
