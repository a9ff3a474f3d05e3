// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/patternlab/engine-extender/internal/plugin"
)

func newInstallCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Publish the plugin assets and register the extension",
		Long: `Publish the plugin descriptor and bundled assets into the public
directory, load the configured extension and report whether the plugin
registered for pattern iteration events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.install(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			printResult(cmd, s.result)
			return nil
		},
	}
}

func printResult(cmd *cobra.Command, res *plugin.Result) {
	cmd.Printf("outcome: %s\n", res.Outcome)
	cmd.Printf("descriptor: %s\n", res.Publish.DescriptorPath)
	if res.Publish.DescriptorErr != nil {
		cmd.Printf("descriptor error: %v\n", res.Publish.DescriptorErr)
	}
	cmd.Printf("assets copied: %d\n", len(res.Publish.Copied))
	for _, f := range res.Publish.Failed {
		cmd.Printf("asset failed: %s\n", f)
	}
}
