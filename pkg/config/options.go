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
	"os"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/transfo/pkg/text"
	"github.com/walteh/transfo/pkg/transform"
)

const (
	DefaultConcurrency             = 1
	DefaultSeparator               = "\n"
	DefaultCache                   = "tmp/transfo/"
	DefaultMode        os.FileMode = 0o644
	DefaultDirMode     os.FileMode = 0o755
)

// 🏭 StageFactory builds the transform for one single-source copy.
// Returning nil means src needs no stage.
type StageFactory func(src, dest string, opts Options) transform.Transform

// 🧵 ConcatStageFactory builds the transform applied to a merged concat body.
// Returning nil means the body is written as is.
type ConcatStageFactory func(srcs []string, dest string, opts Options) transform.Transform

// ⚙️ Options controls one run. It is passed by value to every factory and never mutated during a run.
type Options struct {
	Concurrency int
	Lazy        bool
	Mode        os.FileMode
	Separator   string
	Banner      string
	Footer      string
	Cache       string

	Transforms       []StageFactory
	TransformsConcat []ConcatStageFactory

	ProcessContent        transform.ProcessFunc
	ProcessContentExclude []string

	Process      transform.ProcessFunc
	ProcessData  map[string]any
	StripBanners text.StripMode
	StripBanner  transform.StripFunc

	Replacements []text.ReplacementRule
}

// 🎯 DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Concurrency: DefaultConcurrency,
		Mode:        DefaultMode,
		Separator:   DefaultSeparator,
		Cache:       DefaultCache,
		StripBanner: text.StripBanner,
	}
}

// 🔍 Validate fills unset fields with defaults and rejects values a run cannot use.
// Separator is left alone since an empty separator is meaningful.
func (o *Options) Validate() error {
	if o.Concurrency < 0 {
		return errors.Errorf("concurrency must be positive, got %d", o.Concurrency)
	}
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Mode == 0 {
		o.Mode = DefaultMode
	}
	if o.Mode&^os.ModePerm != 0 {
		return errors.Errorf("mode %#o has bits outside the permission range", uint32(o.Mode))
	}
	if o.Cache == "" {
		o.Cache = DefaultCache
	}
	if o.StripBanner == nil {
		o.StripBanner = text.StripBanner
	}
	if _, err := text.ParseStripMode(string(o.StripBanners)); err != nil {
		return errors.Errorf("validating strip banners: %w", err)
	}
	for _, pattern := range o.ProcessContentExclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid process content exclude pattern %q", pattern)
		}
	}
	if err := text.NewSimpleTextReplacer().ValidateRules(o.Replacements); err != nil {
		return errors.Errorf("validating replacements: %w", err)
	}
	return nil
}

// ProcessOptions returns the settings of the process stage
func (o Options) ProcessOptions() transform.ProcessOptions {
	return transform.ProcessOptions{
		Func:      o.Process,
		Data:      o.ProcessData,
		Strip:     o.StripBanner,
		StripMode: o.StripBanners,
	}
}

// 🔢 ParseMode parses an octal permission string such as "0644", "644" or "0o644"
func ParseMode(s string) (os.FileMode, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0o"), "0O")
	if trimmed == "" {
		return 0, errors.Errorf("empty mode")
	}
	v, err := strconv.ParseUint(trimmed, 8, 32)
	if err != nil {
		return 0, errors.Errorf("parsing mode %q: %w", s, err)
	}
	if v > uint64(os.ModePerm) {
		return 0, errors.Errorf("mode %q is out of range", s)
	}
	return os.FileMode(v), nil
}
