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

// Package expand turns configured source patterns into planner file pairs.
package expand

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/transfo/pkg/config"
	"github.com/walteh/transfo/pkg/pathutil"
	"github.com/walteh/transfo/pkg/plan"
)

var (
	extFirstDot = regexp.MustCompile(`(\.[^/]*)?$`)
	extLastDot  = regexp.MustCompile(`(\.[^/.]*)?$`)
)

// 🔍 All expands every file spec in order
func All(ctx context.Context, specs []config.FileSpec) ([]plan.FilePair, error) {
	var pairs []plan.FilePair
	for i, spec := range specs {
		expanded, err := Spec(ctx, spec)
		if err != nil {
			return nil, errors.Errorf("expanding files[%d]: %w", i, err)
		}
		pairs = append(pairs, expanded...)
	}
	return pairs, nil
}

// 🔍 Spec expands one file mapping.
// Without Expand every match feeds Dest. With Expand each match gets its own
// destination under Dest, relative to Cwd.
func Spec(ctx context.Context, spec config.FileSpec) ([]plan.FilePair, error) {
	logger := zerolog.Ctx(ctx)

	base := "."
	if spec.Expand && spec.Cwd != "" {
		base = spec.Cwd
	}

	matches, err := Patterns(ctx, base, spec.Src, spec.Filter)
	if err != nil {
		return nil, err
	}

	if spec.Nonull {
		matches = withUnmatched(matches, spec.Src)
	}

	if !spec.Expand {
		logger.Debug().Str("dest", spec.Dest).Int("sources", len(matches)).Msg("expanded file mapping")
		return []plan.FilePair{{Dest: spec.Dest, Sources: matches, Nonull: spec.Nonull}}, nil
	}

	var pairs []plan.FilePair
	byDest := make(map[string]int)
	for _, rel := range matches {
		dest := Rename(spec, rel)
		src := rel
		if spec.Cwd != "" {
			src = pathutil.WithKind(path.Join(filepath.ToSlash(spec.Cwd), rel), pathutil.Classify(rel))
		}
		if i, ok := byDest[dest]; ok {
			pairs[i].Sources = append(pairs[i].Sources, src)
			continue
		}
		byDest[dest] = len(pairs)
		pairs = append(pairs, plan.FilePair{Dest: dest, Expanded: true, Sources: []string{src}, Nonull: spec.Nonull})
	}

	logger.Debug().Str("dest", spec.Dest).Int("pairs", len(pairs)).Msg("expanded file mapping")
	return pairs, nil
}

// Rename computes the destination of rel under spec.Dest, applying flatten and ext
func Rename(spec config.FileSpec, rel string) string {
	kind := pathutil.Classify(rel)
	name := strings.TrimSuffix(rel, "/")
	if spec.Flatten {
		name = path.Base(name)
	}
	if spec.Ext != "" && kind == pathutil.File {
		re := extFirstDot
		if spec.ExtDot == config.ExtDotLast {
			re = extLastDot
		}
		dir, file := path.Split(name)
		name = dir + re.ReplaceAllLiteralString(file, spec.Ext)
	}
	return pathutil.WithKind(path.Join(filepath.ToSlash(spec.Dest), name), kind)
}

// 🔍 Patterns matches patterns under base in order.
// A leading "!" removes earlier matches. Directories end with "/".
// Results are relative to base.
func Patterns(ctx context.Context, base string, patterns []string, filter string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	for _, raw := range patterns {
		pattern, exclude := strings.CutPrefix(raw, "!")
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid pattern %q", raw)
		}

		if exclude {
			out = slices.DeleteFunc(out, func(m string) bool {
				ok, _ := doublestar.Match(pattern, strings.TrimSuffix(m, "/"))
				if ok {
					delete(seen, m)
				}
				return ok
			})
			continue
		}

		found, err := glob(base, pattern)
		if err != nil {
			return nil, errors.Errorf("matching %q: %w", raw, err)
		}
		for _, m := range found {
			info, err := os.Stat(filepath.Join(base, filepath.FromSlash(m)))
			if err != nil {
				zerolog.Ctx(ctx).Debug().Str("match", m).Err(err).Msg("match vanished during expansion")
				continue
			}
			if !keep(info, filter) {
				continue
			}
			if info.IsDir() {
				m = pathutil.WithKind(m, pathutil.Directory)
			}
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

func glob(base, pattern string) ([]string, error) {
	root, rest := doublestar.SplitPattern(pattern)
	dir := root
	if !path.IsAbs(root) && !filepath.IsAbs(root) {
		dir = filepath.Join(base, filepath.FromSlash(root))
	}
	found, err := doublestar.Glob(os.DirFS(dir), rest)
	if err != nil {
		return nil, err
	}
	for i, f := range found {
		found[i] = path.Join(root, f)
	}
	slices.Sort(found)
	return found, nil
}

func keep(info os.FileInfo, filter string) bool {
	switch filter {
	case config.FilterFile:
		return info.Mode().IsRegular()
	case config.FilterDirectory:
		return info.IsDir()
	default:
		return true
	}
}

// withUnmatched keeps patterns that matched nothing as literal sources
func withUnmatched(matches []string, patterns []string) []string {
	for _, p := range patterns {
		if strings.HasPrefix(p, "!") {
			continue
		}
		trimmed := strings.TrimSuffix(filepath.ToSlash(p), "/")
		matched := slices.ContainsFunc(matches, func(m string) bool {
			ok, _ := doublestar.Match(trimmed, strings.TrimSuffix(m, "/"))
			return ok
		})
		if !matched {
			matches = append(matches, p)
		}
	}
	return matches
}
