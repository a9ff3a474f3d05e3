// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/patternlab/engine-extender/internal/plugin"
)

func newSchemaCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the plugin descriptor JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := plugin.GenerateDescriptorSchema()
			if err != nil {
				return err
			}

			if output == "" {
				cmd.Println(string(schema))
				return nil
			}

			if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
				return oops.In("cli").With("path", output).Hint("failed to create directory").Wrap(err)
			}
			if err := os.WriteFile(output, schema, 0o600); err != nil {
				return oops.In("cli").With("path", output).Hint("failed to write schema").Wrap(err)
			}
			cmd.Printf("Generated %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the schema to this file instead of stdout")
	return cmd
}
