// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/patternlab/engine-extender/internal/plugin"
	"github.com/patternlab/engine-extender/pkg/errutil"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <descriptor.json>...",
		Short: "Validate plugin descriptor files against the schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var invalid []string
			for _, path := range args {
				err := validateFile(opts.deps.Fs, path)
				if err != nil {
					errutil.LogError(cmd.Context(), opts.logger, "invalid descriptor", err, "file", path)
					cmd.Printf("invalid: %s\n", path)
					invalid = append(invalid, path)
					continue
				}
				cmd.Printf("valid: %s\n", path)
			}

			if len(invalid) > 0 {
				return oops.In("cli").
					Code(plugin.CodeDescriptorInvalid).
					With("files", invalid).
					Errorf("%d of %d descriptors invalid", len(invalid), len(args))
			}
			return nil
		},
	}
}

func validateFile(fsys afero.Fs, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return oops.In("cli").With("file", path).Hint("failed to read descriptor").Wrap(err)
	}
	return plugin.ValidateDescriptor(data)
}
