// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"

	"github.com/patternlab/engine-extender/internal/observability"
	"github.com/patternlab/engine-extender/pkg/errutil"
	"github.com/patternlab/engine-extender/pkg/patternlab"
)

// bundleDir is the top-level directory of the bundled asset tree. It is
// stripped from paths when assets are published.
const bundleDir = "dist"

// writeRetryDelay is the pause between attempts of a failed output write.
const writeRetryDelay = 10 * time.Millisecond

// PublishReport summarizes one asset publication pass.
type PublishReport struct {
	DescriptorPath string
	// DescriptorErr is set when the descriptor could not be written.
	DescriptorErr error
	// Copied and Failed hold bundle paths.
	Copied []string
	Failed []string
}

// DescriptorPath returns where the descriptor is written for publicRoot.
func DescriptorPath(publicRoot string) string {
	return filepath.Join(publicRoot, componentsDir, packagesDir, ID+".json")
}

// AssetRoot returns where bundled assets are copied for publicRoot.
func AssetRoot(publicRoot string) string {
	return filepath.Join(publicRoot, componentsDir, assetsDir, ID)
}

// publish writes the descriptor, registers it with the host and copies the
// bundle. Failures are logged and recorded in the report; publication never
// aborts part way.
func (i *Installer) publish(ctx context.Context, rt *patternlab.Runtime) *PublishReport {
	publicRoot := rt.Config.Paths.Public.Root
	descriptor := FrontendDescriptor()

	report := &PublishReport{DescriptorPath: DescriptorPath(publicRoot)}
	if err := i.writeDescriptor(ctx, report.DescriptorPath, descriptor); err != nil {
		report.DescriptorErr = err
		i.metrics.DescriptorWrites.WithLabelValues(observability.StatusFailed).Inc()
		errutil.LogError(ctx, i.logger, "error occurred while writing plugin file configuration", err)
	} else {
		i.metrics.DescriptorWrites.WithLabelValues(observability.StatusOK).Inc()
	}

	rt.Plugins = append(rt.Plugins, descriptor)

	assetRoot := AssetRoot(publicRoot)
	walkErr := fs.WalkDir(i.bundle, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			i.copyFailed(ctx, report, p, oops.In("publish").Code(CodeAssetCopy).With("file", p).Wrap(err))
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || i.excluded(p) {
			return nil
		}

		if err := i.copyAsset(ctx, p, filepath.Join(assetRoot, filepath.FromSlash(stripBundleDir(p)))); err != nil {
			i.copyFailed(ctx, report, p, err)
			return nil
		}
		report.Copied = append(report.Copied, p)
		i.metrics.AssetCopies.WithLabelValues(observability.StatusOK).Inc()
		return nil
	})
	if walkErr != nil {
		i.copyFailed(ctx, report, ".", oops.In("publish").Code(CodeAssetCopy).Wrap(walkErr))
	}

	i.logger.DebugContext(ctx, "published plugin assets",
		"descriptor", report.DescriptorPath,
		"copied", len(report.Copied),
		"failed", len(report.Failed))

	return report
}

func (i *Installer) writeDescriptor(ctx context.Context, path string, d *Descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return oops.In("publish").Code(CodeDescriptorWrite).With("path", path).Wrap(err)
	}
	if err := i.writeFile(ctx, path, data); err != nil {
		return oops.In("publish").Code(CodeDescriptorWrite).With("path", path).Wrap(err)
	}
	return nil
}

// copyAsset copies the bytes of bundle file src to dst.
func (i *Installer) copyAsset(ctx context.Context, src, dst string) error {
	data, err := fs.ReadFile(i.bundle, src)
	if err != nil {
		return oops.In("publish").Code(CodeAssetCopy).With("file", src).Hint("failed to read bundled file").Wrap(err)
	}
	if err := i.writeFile(ctx, dst, data); err != nil {
		return oops.In("publish").Code(CodeAssetCopy).With("file", src).With("dest", dst).Wrap(err)
	}
	return nil
}

// writeFile creates the parent directories of path and writes data,
// retrying transient failures. Permission and existence errors fail at once.
func (i *Installer) writeFile(ctx context.Context, path string, data []byte) error {
	backoff := retry.WithMaxRetries(i.writeRetries, retry.NewConstant(writeRetryDelay))

	return retry.Do(ctx, backoff, func(context.Context) error {
		err := i.out.MkdirAll(filepath.Dir(path), 0o755)
		if err == nil {
			err = afero.WriteFile(i.out, path, data, 0o644)
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrExist) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func (i *Installer) copyFailed(ctx context.Context, report *PublishReport, file string, err error) {
	report.Failed = append(report.Failed, file)
	i.metrics.AssetCopies.WithLabelValues(observability.StatusFailed).Inc()
	errutil.LogError(ctx, i.logger, "error occurred while copying plugin file", err, "file", file)
}

func (i *Installer) excluded(p string) bool {
	for _, g := range i.excludes {
		if g.Match(p) {
			return true
		}
	}
	return false
}

// stripBundleDir removes the first "dist" segment from a slash-separated
// bundle path: "dist/js/a.js" becomes "js/a.js".
func stripBundleDir(p string) string {
	parts := strings.Split(p, "/")
	for idx, part := range parts {
		if part == bundleDir {
			return strings.Join(append(parts[:idx:idx], parts[idx+1:]...), "/")
		}
	}
	return p
}
