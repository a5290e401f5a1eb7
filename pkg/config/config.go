// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/transfo/pkg/text"
)

// ErrUnknownTarget is returned when a requested target is not declared
var ErrUnknownTarget = errors.Base("unknown target")

// RCFile is the extensionless config name, tried as YAML then HCL
const RCFile = ".transforc"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var parsers []Parser

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is the contents of a transfo config file
type Config struct {
	Options *OptionsConfig `json:"options,omitempty" yaml:"options,omitempty" hcl:"options,block"`
	Targets []Target       `json:"targets" yaml:"targets" hcl:"target,block"`

	location string
}

// 🎯 Target is a named set of file mappings with optional option overrides
type Target struct {
	Name    string         `json:"name" yaml:"name" hcl:"name,label"`
	Options *OptionsConfig `json:"options,omitempty" yaml:"options,omitempty" hcl:"options,block"`
	Files   []FileSpec     `json:"files" yaml:"files" hcl:"files,block"`
}

// 📂 FileSpec maps source patterns to a destination
type FileSpec struct {
	Dest    string   `json:"dest" yaml:"dest" hcl:"dest"`
	Src     []string `json:"src" yaml:"src" hcl:"src"`
	Cwd     string   `json:"cwd,omitempty" yaml:"cwd,omitempty" hcl:"cwd,optional"`
	Expand  bool     `json:"expand,omitempty" yaml:"expand,omitempty" hcl:"expand,optional"`
	Flatten bool     `json:"flatten,omitempty" yaml:"flatten,omitempty" hcl:"flatten,optional"`
	Nonull  bool     `json:"nonull,omitempty" yaml:"nonull,omitempty" hcl:"nonull,optional"`
	Ext     string   `json:"ext,omitempty" yaml:"ext,omitempty" hcl:"ext,optional"`
	ExtDot  string   `json:"ext_dot,omitempty" yaml:"ext_dot,omitempty" hcl:"ext_dot,optional"`
	Filter  string   `json:"filter,omitempty" yaml:"filter,omitempty" hcl:"filter,optional"`
}

const (
	FilterFile      = "isFile"
	FilterDirectory = "isDirectory"

	ExtDotFirst = "first"
	ExtDotLast  = "last"
)

// 🔧 OptionsConfig is the file form of Options; nil fields inherit
type OptionsConfig struct {
	Concurrency           *int                   `json:"concurrency,omitempty" yaml:"concurrency,omitempty" hcl:"concurrency,optional"`
	Lazy                  *bool                  `json:"lazy,omitempty" yaml:"lazy,omitempty" hcl:"lazy,optional"`
	Mode                  *string                `json:"mode,omitempty" yaml:"mode,omitempty" hcl:"mode,optional"`
	Separator             *string                `json:"separator,omitempty" yaml:"separator,omitempty" hcl:"separator,optional"`
	Banner                *string                `json:"banner,omitempty" yaml:"banner,omitempty" hcl:"banner,optional"`
	Footer                *string                `json:"footer,omitempty" yaml:"footer,omitempty" hcl:"footer,optional"`
	Cache                 *string                `json:"cache,omitempty" yaml:"cache,omitempty" hcl:"cache,optional"`
	StripBanners          *string                `json:"strip_banners,omitempty" yaml:"strip_banners,omitempty" hcl:"strip_banners,optional"`
	ProcessContentExclude []string               `json:"process_content_exclude,omitempty" yaml:"process_content_exclude,omitempty" hcl:"process_content_exclude,optional"`
	ProcessData           map[string]string      `json:"process_data,omitempty" yaml:"process_data,omitempty" hcl:"process_data,optional"`
	Replacements          []text.ReplacementRule `json:"replacements,omitempty" yaml:"replacements,omitempty" hcl:"replacement,block"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	if filepath.Base(path) == RCFile {
		cfg, err = parseRC(ctx, data)
	} else {
		p := GetParser(path)
		if p == nil {
			return nil, errors.Errorf("no parser found for file: %s", path)
		}
		cfg, err = p.Parse(ctx, data)
	}
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	cfg.location = path

	logger.Debug().Str("path", path).Int("targets", len(cfg.Targets)).Msg("configuration loaded")
	return cfg, nil
}

func parseRC(ctx context.Context, data []byte) (*Config, error) {
	cfg, yamlErr := (&YAMLParser{}).Parse(ctx, data)
	if yamlErr == nil {
		return cfg, nil
	}
	cfg, hclErr := (&HCLParser{}).Parse(ctx, data)
	if hclErr == nil {
		return cfg, nil
	}
	return nil, errors.Errorf("parsing %s as YAML or HCL: %w", RCFile, errors.Join(yamlErr, hclErr))
}

// Location returns the path the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if len(cfg.Targets) == 0 {
		return errors.Errorf("at least one target is required")
	}
	if err := cfg.Options.validate(); err != nil {
		return errors.Errorf("options: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Targets))
	for i, t := range cfg.Targets {
		if t.Name == "" {
			return errors.Errorf("targets[%d]: name is required", i)
		}
		if seen[t.Name] {
			return errors.Errorf("target %q is declared twice", t.Name)
		}
		seen[t.Name] = true

		if err := t.Options.validate(); err != nil {
			return errors.Errorf("target %q options: %w", t.Name, err)
		}
		if len(t.Files) == 0 {
			return errors.Errorf("target %q: at least one files entry is required", t.Name)
		}
		for j, f := range t.Files {
			if err := f.Validate(); err != nil {
				return errors.Errorf("target %q files[%d]: %w", t.Name, j, err)
			}
		}
	}
	return nil
}

// 🔍 Validate checks a single file mapping
func (f FileSpec) Validate() error {
	if f.Dest == "" {
		return errors.Errorf("dest is required")
	}
	if len(f.Src) == 0 {
		return errors.Errorf("src is required")
	}
	switch f.Filter {
	case "", FilterFile, FilterDirectory:
	default:
		return errors.Errorf("unknown filter %q", f.Filter)
	}
	switch f.ExtDot {
	case "", ExtDotFirst, ExtDotLast:
	default:
		return errors.Errorf("unknown ext_dot %q", f.ExtDot)
	}
	return nil
}

func (oc *OptionsConfig) validate() error {
	if oc == nil {
		return nil
	}
	opts := DefaultOptions()
	if err := oc.Apply(&opts); err != nil {
		return err
	}
	return opts.Validate()
}

// 🔄 Apply overlays the set fields onto opts
func (oc *OptionsConfig) Apply(opts *Options) error {
	if oc == nil {
		return nil
	}
	if oc.Concurrency != nil {
		if *oc.Concurrency < 1 {
			return errors.Errorf("concurrency must be at least 1, got %d", *oc.Concurrency)
		}
		opts.Concurrency = *oc.Concurrency
	}
	if oc.Lazy != nil {
		opts.Lazy = *oc.Lazy
	}
	if oc.Mode != nil {
		mode, err := ParseMode(*oc.Mode)
		if err != nil {
			return err
		}
		opts.Mode = mode
	}
	if oc.Separator != nil {
		opts.Separator = *oc.Separator
	}
	if oc.Banner != nil {
		opts.Banner = *oc.Banner
	}
	if oc.Footer != nil {
		opts.Footer = *oc.Footer
	}
	if oc.Cache != nil {
		opts.Cache = *oc.Cache
	}
	if oc.StripBanners != nil {
		mode, err := text.ParseStripMode(*oc.StripBanners)
		if err != nil {
			return err
		}
		opts.StripBanners = mode
	}
	if len(oc.ProcessContentExclude) > 0 {
		opts.ProcessContentExclude = slices.Clone(oc.ProcessContentExclude)
	}
	if oc.ProcessData != nil {
		data := make(map[string]any, len(oc.ProcessData))
		for k, v := range oc.ProcessData {
			data[k] = v
		}
		opts.ProcessData = data
	}
	if len(oc.Replacements) > 0 {
		opts.Replacements = append(slices.Clone(opts.Replacements), oc.Replacements...)
	}
	return nil
}

// 📦 Resolved is a target with its effective options
type Resolved struct {
	Name    string
	Options Options
	Files   []FileSpec
}

// 🎯 Resolve layers base, the global options and each target's options, in that order.
// With no names every target is returned in declaration order.
func (cfg *Config) Resolve(base Options, names ...string) ([]Resolved, error) {
	selected := cfg.Targets
	if len(names) > 0 {
		selected = make([]Target, 0, len(names))
		for _, name := range names {
			name := name
			idx := slices.IndexFunc(cfg.Targets, func(t Target) bool { return t.Name == name })
			if idx < 0 {
				return nil, errors.Errorf("%w: %s (known: %s)", ErrUnknownTarget, name, strings.Join(cfg.TargetNames(), ", "))
			}
			selected = append(selected, cfg.Targets[idx])
		}
	}

	out := make([]Resolved, 0, len(selected))
	for _, t := range selected {
		opts := base
		if err := cfg.Options.Apply(&opts); err != nil {
			return nil, errors.Errorf("applying options: %w", err)
		}
		if err := t.Options.Apply(&opts); err != nil {
			return nil, errors.Errorf("applying target %q options: %w", t.Name, err)
		}
		if err := opts.Validate(); err != nil {
			return nil, errors.Errorf("validating target %q options: %w", t.Name, err)
		}
		out = append(out, Resolved{Name: t.Name, Options: opts, Files: t.Files})
	}
	return out, nil
}

// TargetNames lists the declared targets in order
func (cfg *Config) TargetNames() []string {
	names := make([]string, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		names = append(names, t.Name)
	}
	return names
}
