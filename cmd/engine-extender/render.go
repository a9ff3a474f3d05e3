// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/patternlab/engine-extender/pkg/engine"
	"github.com/patternlab/engine-extender/pkg/patternlab"
)

const (
	templateExt = ".tmpl"
	dataExt     = ".json"
	renderedDir = "patterns"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var iterations int

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Install the plugin and render patterns through the extended engines",
		Long: `Install the plugin, load every *.tmpl pattern under the pattern source
directory, emit the pattern iteration event and write each rendered pattern to
<public>/patterns/<name>.html. Data for a pattern is read from a sibling .json
file when present.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if iterations < 1 {
				return oops.In("cli").With("iterations", iterations).New("iterations must be at least 1")
			}

			s, err := opts.install(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			patterns, err := loadPatterns(opts.deps.Fs, s.rt.Config.Paths.Source.Patterns)
			if err != nil {
				return err
			}
			s.rt.Patterns = patterns

			for range iterations {
				if err := s.rt.Events.Emit(cmd.Context(), patternlab.EventPatternIterationEnd, s.rt); err != nil {
					return err
				}
			}

			outDir := filepath.Join(s.rt.Config.Paths.Public.Root, renderedDir)
			for _, p := range patterns {
				out, err := p.Render()
				if err != nil {
					return oops.In("cli").With("pattern", p.Name).Wrap(err)
				}
				dst := filepath.Join(outDir, p.Name+".html")
				if err := opts.deps.Fs.MkdirAll(outDir, 0o755); err != nil {
					return oops.In("cli").With("path", outDir).Wrap(err)
				}
				if err := afero.WriteFile(opts.deps.Fs, dst, []byte(out), 0o644); err != nil {
					return oops.In("cli").With("path", dst).Wrap(err)
				}
			}

			printResult(cmd, s.result)
			cmd.Printf("rendered %d patterns\n", len(patterns))
			return nil
		},
	}

	cmd.Flags().IntVar(&iterations, "iterations", 1, "number of pattern iteration events to emit")
	return cmd
}

// loadPatterns reads every template under dir. Pattern names are the
// template path relative to dir, without extension, with separators
// replaced by "-". A missing dir yields no patterns.
func loadPatterns(fsys afero.Fs, dir string) ([]*patternlab.Pattern, error) {
	exists, err := afero.DirExists(fsys, dir)
	if err != nil {
		return nil, oops.In("cli").With("path", dir).Wrap(err)
	}
	if !exists {
		return nil, nil
	}

	var patterns []*patternlab.Pattern
	walkErr := afero.Walk(fsys, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != templateExt {
			return nil
		}

		src, err := afero.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		data, err := loadData(fsys, strings.TrimSuffix(path, templateExt)+dataExt)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.ReplaceAll(filepath.ToSlash(strings.TrimSuffix(rel, templateExt)), "/", "-")

		patterns = append(patterns, &patternlab.Pattern{
			Name:     name,
			Template: string(src),
			Data:     data,
			Engine:   &patternlab.EngineHolder{Engine: engine.NewHTML("html")},
		})
		return nil
	})
	if walkErr != nil {
		return nil, oops.In("cli").With("path", dir).Hint("failed to load patterns").Wrap(walkErr)
	}

	sort.Slice(patterns, func(i, j int) bool { return patterns[i].Name < patterns[j].Name })
	return patterns, nil
}

func loadData(fsys afero.Fs, path string) (map[string]any, error) {
	raw, err := afero.ReadFile(fsys, path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, oops.In("cli").With("path", path).Hint("invalid pattern data").Wrap(err)
	}
	return data, nil
}
