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

package operation

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/transfo/pkg/config"
	"github.com/walteh/transfo/pkg/identity"
	"github.com/walteh/transfo/pkg/status"
	"github.com/walteh/transfo/pkg/text"
	"github.com/walteh/transfo/pkg/transform"
	"github.com/walteh/transfo/pkg/workspace"
)

// run is everything one Runner.Run call shares between its tasks
type run struct {
	opts     config.Options
	sink     Sink
	tally    *status.Tally
	dirs     *workspace.DirCache
	locks    *workspace.Locks
	keyer    *identity.Keyer
	replacer text.TextReplacer

	mu     sync.Mutex
	staged map[string]*future
}

func (r *Runner) newRun() (*run, error) {
	tally, err := status.NewTally(r.opts.Registerer)
	if err != nil {
		return nil, errors.Errorf("creating tally: %w", err)
	}
	keyer, err := identity.NewKeyer(identity.DefaultKeyerSize)
	if err != nil {
		return nil, errors.Errorf("creating keyer: %w", err)
	}
	return &run{
		opts:     r.opts.Settings,
		sink:     r.opts.Sink,
		tally:    tally,
		dirs:     workspace.NewDirCache(config.DefaultDirMode),
		locks:    workspace.NewLocks(),
		keyer:    keyer,
		replacer: text.NewSimpleTextReplacer(),
		staged:   make(map[string]*future),
	}, nil
}

// 🔮 future is the pending result of a staging copy
type future struct {
	src  string
	path string
	done chan struct{}
	err  error
}

func newFuture(src, path string) *future {
	return &future{src: src, path: path, done: make(chan struct{})}
}

func (f *future) resolve(err error) {
	f.err = err
	close(f.done)
}

func (f *future) wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stage returns the future for src's staged copy. The copy task is returned only
// the first time a cache path is seen; later groups share the same future.
func (r *run) stage(ctx context.Context, src string) (*future, *copyTask) {
	key, err := r.keyer.Identify(src)
	if err != nil {
		f := newFuture(src, "")
		if errors.Is(err, identity.ErrNotFound) {
			err = errors.Errorf("%w: %s", ErrSourceMissing, src)
		}
		f.resolve(err)
		return f, nil
	}
	cachePath := filepath.Join(r.opts.Cache, key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.staged[cachePath]; ok {
		zerolog.Ctx(ctx).Debug().Str("src", src).Str("cache", cachePath).Msg("reusing staged source")
		return f, nil
	}
	f := newFuture(src, cachePath)
	r.staged[cachePath] = f
	return f, newCopyTask(r, src, cachePath, f)
}

// acquire takes the write lock on dest, queueing behind the current writer if there is one
func (r *run) acquire(ctx context.Context, dest string) (func(), error) {
	if unlock, ok := r.locks.TryLock(dest); ok {
		return unlock, nil
	}
	zerolog.Ctx(ctx).Debug().Err(ErrWriteConflict).Str("dest", dest).Msg("waiting for write lock")
	return r.locks.Lock(ctx, dest)
}

// copyStages builds the per-file stages: configured factories, then processContent, process, replacements
func (r *run) copyStages(ctx context.Context, src, dest string) []transform.Transform {
	logger := zerolog.Ctx(ctx)
	var stages []transform.Transform
	for i, factory := range r.opts.Transforms {
		if factory == nil {
			continue
		}
		stage := factory(src, dest, r.opts)
		if stage == nil {
			logger.Debug().Int("factory", i).Str("src", src).Msg("factory returned no stage")
			continue
		}
		stages = append(stages, stage)
	}
	if r.opts.ProcessContent != nil {
		stages = append(stages, transform.ProcessContent(r.opts.ProcessContent, r.opts.ProcessContentExclude, src, dest))
	}
	if p := r.opts.ProcessOptions(); p.Enabled() {
		stages = append(stages, transform.Process(p, src, dest))
	}
	if stage := transform.Replace(r.replacer, r.opts.Replacements, src); stage != nil {
		stages = append(stages, stage)
	}
	return stages
}

// concatStages builds the stages applied to a merged body
func (r *run) concatStages(ctx context.Context, srcs []string, dest string) []transform.Transform {
	var stages []transform.Transform
	for i, factory := range r.opts.TransformsConcat {
		if factory == nil {
			continue
		}
		stage := factory(srcs, dest, r.opts)
		if stage == nil {
			zerolog.Ctx(ctx).Debug().Int("factory", i).Str("dest", dest).Msg("concat factory returned no stage")
			continue
		}
		stages = append(stages, stage)
	}
	return stages
}
