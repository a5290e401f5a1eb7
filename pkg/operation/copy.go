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
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/transfo/pkg/pathutil"
	"github.com/walteh/transfo/pkg/status"
	"github.com/walteh/transfo/pkg/transform"
	"github.com/walteh/transfo/pkg/workspace"
)

// 📋 copyTask copies one source to one destination.
// A staging copy writes into the cache for a later concat; it has no banner or footer,
// does not touch the file and lazy counters, and resolves its future when finished.
type copyTask struct {
	run     *run
	src     string
	dest    string
	staging *future

	srcInfo  os.FileInfo
	destInfo os.FileInfo
	stages   int
	start    time.Time
}

func newCopyTask(r *run, src, dest string, staging *future) *copyTask {
	return &copyTask{
		run:     r,
		src:     filepath.Clean(src),
		dest:    filepath.Clean(dest),
		staging: staging,
	}
}

// 🏃 execute drives the task to a terminal state
func (t *copyTask) execute(ctx context.Context) (err error) {
	logger := zerolog.Ctx(ctx).With().Str("src", t.src).Str("dest", t.dest).Bool("staging", t.staging != nil).Logger()
	ctx = logger.WithContext(ctx)

	if t.staging != nil {
		defer func() { t.staging.resolve(err) }()
	}

	t.start = time.Now()
	state := StatePending
	for !state.Terminal() {
		next, stepErr := t.step(ctx, state)
		if stepErr != nil {
			logger.Debug().Err(stepErr).Stringer("step", state).Msg("copy failed")
			if t.staging == nil {
				t.emit(ctx, status.EventFail)
			}
			return &TaskError{Path: t.src, Dest: t.dest, Step: state, Err: stepErr}
		}
		logger.Debug().Stringer("from", state).Stringer("to", next).Msg("copy step")
		state = next
	}
	return nil
}

func (t *copyTask) step(ctx context.Context, state State) (State, error) {
	switch state {
	case StatePending:
		if err := ctx.Err(); err != nil {
			return StateFailed, err
		}
		return StateStatSource, nil
	case StateStatSource:
		return t.statSource(ctx)
	case StateCheckLazy:
		return t.checkLazy(ctx)
	case StateReconcileType:
		return t.reconcileType(ctx)
	case StateEnsureDirectory:
		return t.ensureDirectory(ctx)
	case StateWrite:
		return t.write(ctx)
	default:
		return StateFailed, errors.Errorf("copy task has no step %s", state)
	}
}

func (t *copyTask) statSource(ctx context.Context) (State, error) {
	info, err := os.Stat(t.src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StateFailed, errors.Errorf("%w: %s", ErrSourceMissing, t.src)
		}
		return StateFailed, errors.Errorf("stat source: %w", err)
	}
	t.srcInfo = info

	if _, ok := pathutil.KindOf(info); !ok {
		zerolog.Ctx(ctx).Debug().Err(ErrNotFileOrDirectory).Msg("ignoring source")
		t.emit(ctx, status.EventSkip)
		return StateSkipped, nil
	}
	if t.staging != nil && info.IsDir() {
		return StateFailed, errors.Errorf("cannot concatenate directory %s", t.src)
	}

	if destInfo, err := os.Stat(t.dest); err == nil {
		t.destInfo = destInfo
	}
	return StateCheckLazy, nil
}

func (t *copyTask) checkLazy(ctx context.Context) (State, error) {
	if !t.run.opts.Lazy || t.destInfo == nil {
		return StateReconcileType, nil
	}
	if t.destInfo.ModTime().Before(t.srcInfo.ModTime()) {
		return StateReconcileType, nil
	}
	zerolog.Ctx(ctx).Debug().Msg("destination is up to date")
	if t.staging == nil {
		t.run.tally.AddLazy()
		t.emit(ctx, status.EventLazy)
	}
	return StateDone, nil
}

// typeMismatch reports ErrTypeMismatch when dest exists with the other kind
func typeMismatch(src, dest os.FileInfo) error {
	if dest == nil || src.IsDir() == dest.IsDir() {
		return nil
	}
	return ErrTypeMismatch
}

func (t *copyTask) reconcileType(ctx context.Context) (State, error) {
	if err := typeMismatch(t.srcInfo, t.destInfo); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("removing destination")
		t.run.dirs.Forget(t.dest)
		if err := workspace.RemoveAll(ctx, t.dest); err != nil {
			return StateFailed, err
		}
		t.destInfo = nil
		t.emit(ctx, status.EventRemove)
	}
	return StateEnsureDirectory, nil
}

func (t *copyTask) ensureDirectory(ctx context.Context) (State, error) {
	if t.srcInfo.IsDir() {
		if t.destInfo != nil {
			t.run.dirs.Mark(t.dest)
			return StateDone, nil
		}
		if t.run.dirs.Known(t.dest) {
			return StateDone, nil
		}
		created, err := t.run.dirs.Ensure(ctx, t.dest)
		if err != nil {
			return StateFailed, err
		}
		if created {
			t.run.tally.AddDir()
			t.emit(ctx, status.EventDirectory)
		}
		return StateDone, nil
	}

	created, err := t.run.dirs.Ensure(ctx, filepath.Dir(t.dest))
	if err != nil {
		return StateFailed, err
	}
	if created {
		t.run.tally.AddDir()
	}
	return StateWrite, nil
}

func (t *copyTask) pipeline(ctx context.Context) transform.Pipeline {
	p := transform.Pipeline{Stages: t.run.copyStages(ctx, t.src, t.dest)}
	if t.staging == nil {
		p.Banner = t.run.opts.Banner
		p.Footer = t.run.opts.Footer
	}
	t.stages = p.Len()
	return p
}

func (t *copyTask) write(ctx context.Context) (State, error) {
	unlock, err := t.run.acquire(ctx, t.dest)
	if err != nil {
		return StateFailed, err
	}
	defer unlock()

	p := t.pipeline(ctx)
	err = workspace.WriteFile(ctx, t.dest, t.run.opts.Mode, func(w io.Writer) error {
		f, err := os.Open(t.src)
		if err != nil {
			return errors.Errorf("opening source: %w", err)
		}
		defer f.Close()
		return p.Run(ctx, w, f)
	})
	if err != nil {
		return StateFailed, err
	}

	if t.staging != nil {
		t.emit(ctx, status.EventStage)
		return StateDone, nil
	}
	t.run.tally.AddFile()
	t.emit(ctx, status.EventCopy)
	return StateDone, nil
}

func (t *copyTask) emit(ctx context.Context, kind status.EventKind) {
	t.run.sink.FileOperation(ctx, status.Event{
		Kind:     kind,
		Sources:  []string{t.src},
		Dest:     t.dest,
		Stages:   t.stages,
		Duration: time.Since(t.start),
	})
}
