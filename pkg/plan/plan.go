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

// Package plan groups declared source/destination pairs by effective destination.
package plan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/transfo/pkg/pathutil"
)

// 📂 FilePair is one declared mapping of sources to a destination
type FilePair struct {
	// Dest is a file path, or a directory when it ends with a separator
	Dest string
	// Expanded means Dest is already the per-source destination
	Expanded bool
	// Sources in declaration order
	Sources []string
	// Nonull tolerates sources that disappear before they are read
	Nonull bool
}

// 📦 Group is every source that writes to one destination
type Group struct {
	Dest         string
	Sources      []string
	Kind         pathutil.Kind
	AllowMissing bool
}

// IsConcat reports whether the group merges several sources
func (g Group) IsConcat() bool {
	return len(g.Sources) > 1
}

// Warner receives non-fatal planning problems
type Warner interface {
	Warn(ctx context.Context, msg string)
}

// 🗺️ Planner turns file pairs into destination groups
type Planner struct {
	warn Warner
	stat func(string) (os.FileInfo, error)
}

// NewPlanner creates a planner reporting missing sources to w
func NewPlanner(w Warner) *Planner {
	return &Planner{warn: w, stat: os.Stat}
}

// 🎯 Plan resolves every pair. Missing sources are warned about and left out.
// Groups come back in order of first declaration; sources keep declaration order.
func (p *Planner) Plan(ctx context.Context, pairs []FilePair) ([]Group, error) {
	logger := zerolog.Ctx(ctx)

	var groups []Group
	index := make(map[string]int)

	for _, pair := range pairs {
		for _, src := range pair.Sources {
			info, err := p.stat(filepath.Clean(src))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					p.warn.Warn(ctx, `Source file "`+src+`" not found.`)
					continue
				}
				return nil, errors.Errorf("checking source %s: %w", src, err)
			}

			srcKind := pathutil.File
			if info.IsDir() {
				srcKind = pathutil.Directory
			}

			dest := Destination(pair, src)
			if pathutil.Classify(dest) != srcKind {
				logger.Debug().Str("src", src).Str("dest", dest).Stringer("kind", srcKind).Msg("coercing destination to source type")
				dest = pathutil.WithKind(dest, srcKind)
			}

			key := pathutil.Key(dest)
			if i, ok := index[key]; ok {
				groups[i].Sources = append(groups[i].Sources, src)
				groups[i].AllowMissing = groups[i].AllowMissing || pair.Nonull
				continue
			}
			index[key] = len(groups)
			groups = append(groups, Group{
				Dest:         dest,
				Sources:      []string{src},
				Kind:         srcKind,
				AllowMissing: pair.Nonull,
			})
		}
	}

	logger.Debug().Int("pairs", len(pairs)).Int("groups", len(groups)).Msg("planned destinations")
	return groups, nil
}

// Destination is the effective destination of src within pair, before type coercion
func Destination(pair FilePair, src string) string {
	if !pathutil.IsDir(pair.Dest) || pair.Expanded {
		return pair.Dest
	}
	return pathutil.Normalize(filepath.Join(pair.Dest, src))
}
