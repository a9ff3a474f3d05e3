// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

// Package config loads the Pattern Lab host configuration from a YAML file
// and command-line flags.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/patternlab/engine-extender/internal/plugin"
	"github.com/patternlab/engine-extender/pkg/patternlab"
)

// CodeLoadFailed is attached to configuration errors.
const CodeLoadFailed = "CONFIG_LOAD_FAILED"

// Default values for host paths.
const (
	DefaultPublicRoot = "public"
	DefaultPatterns   = "source/_patterns"
)

// Flag names bound to config keys.
const (
	FlagExtensionPath = "extension-path"
	FlagPublicRoot    = "public-root"
	FlagPatterns      = "patterns"
	FlagEnable        = "enable"
)

// flagKeys maps flag names to koanf keys.
var flagKeys = map[string]string{
	FlagExtensionPath: plugin.ConfigKey,
	FlagPublicRoot:    "paths.public.root",
	FlagPatterns:      "paths.source.patterns",
	FlagEnable:        "plugins." + plugin.ID + ".enabled",
}

// RegisterFlags adds the config flags to fs. Their defaults are the config
// defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagExtensionPath, "", "extension script, relative to the project root")
	fs.String(FlagPublicRoot, DefaultPublicRoot, "public output directory")
	fs.String(FlagPatterns, DefaultPatterns, "pattern source directory")
	fs.Bool(FlagEnable, false, "enable the engine extender plugin")
}

// Load reads the YAML file at path, when path is set, and overlays the
// flags in fs that were changed. Unset values fall back to the flag defaults.
func Load(path string, fs *pflag.FlagSet) (*patternlab.Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.In("config").Code(CodeLoadFailed).With("path", path).Hint("failed to read config file").Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.In("config").Code(CodeLoadFailed).Hint("failed to read flags").Wrap(err)
		}
	}

	cfg := &patternlab.Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.In("config").Code(CodeLoadFailed).Hint("failed to decode config").Wrap(err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *patternlab.Config) {
	if cfg.Paths.Public.Root == "" {
		cfg.Paths.Public.Root = DefaultPublicRoot
	}
	if cfg.Paths.Source.Patterns == "" {
		cfg.Paths.Source.Patterns = DefaultPatterns
	}
}

// Marshal renders cfg as YAML.
func Marshal(cfg *patternlab.Config) ([]byte, error) {
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return nil, oops.In("config").Hint("failed to encode config").Wrap(err)
	}
	return data, nil
}
