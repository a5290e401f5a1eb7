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

	"github.com/walteh/transfo/pkg/plan"
	"github.com/walteh/transfo/pkg/status"
	"github.com/walteh/transfo/pkg/transform"
	"github.com/walteh/transfo/pkg/workspace"
)

// 🧵 concatTask merges the staged copies of a group's sources into its destination
type concatTask struct {
	run    *run
	group  plan.Group
	dest   string
	staged []*future

	// sources and paths that survived staging and stat, in group order
	sources []string
	paths   []string

	srcInfos []os.FileInfo
	destInfo os.FileInfo
	start    time.Time
}

func newConcatTask(r *run, g plan.Group, staged []*future) *concatTask {
	return &concatTask{
		run:    r,
		group:  g,
		dest:   filepath.Clean(g.Dest),
		staged: staged,
	}
}

// 🏃 execute drives the task to a terminal state
func (t *concatTask) execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("dest", t.dest).Int("sources", len(t.group.Sources)).Logger()
	ctx = logger.WithContext(ctx)

	t.start = time.Now()
	state := StatePending
	for !state.Terminal() {
		next, err := t.step(ctx, state)
		if err != nil {
			logger.Debug().Err(err).Stringer("step", state).Msg("concat failed")
			t.emit(ctx, status.EventFail)
			return &TaskError{Path: t.group.Dest, Dest: t.dest, Step: state, Err: err}
		}
		logger.Debug().Stringer("from", state).Stringer("to", next).Msg("concat step")
		state = next
	}
	return nil
}

func (t *concatTask) step(ctx context.Context, state State) (State, error) {
	switch state {
	case StatePending:
		if err := ctx.Err(); err != nil {
			return StateFailed, err
		}
		return StateAwaitStaging, nil
	case StateAwaitStaging:
		return t.awaitStaging(ctx)
	case StateStatAll:
		return t.statAll(ctx)
	case StateCheckLazy:
		return t.checkLazy(ctx)
	case StateEnsureDirectory:
		return t.ensureDirectory(ctx)
	case StateMerge:
		return t.merge(ctx)
	default:
		return StateFailed, errors.Errorf("concat task has no step %s", state)
	}
}

func (t *concatTask) tolerate(ctx context.Context, src string) {
	t.run.sink.Warn(ctx, `Source file "`+src+`" not found, skipped in concatenation to "`+t.group.Dest+`".`)
}

func (t *concatTask) awaitStaging(ctx context.Context) (State, error) {
	for _, f := range t.staged {
		err := f.wait(ctx)
		switch {
		case err == nil:
			t.sources = append(t.sources, f.src)
			t.paths = append(t.paths, f.path)
		case t.group.AllowMissing && errors.Is(err, ErrSourceMissing):
			t.tolerate(ctx, f.src)
		case ctx.Err() != nil:
			return StateFailed, ctx.Err()
		default:
			return StateFailed, errors.Join(errors.Errorf("%w: %s", ErrStagingFailed, f.src), err)
		}
	}
	return StateStatAll, nil
}

func (t *concatTask) statAll(ctx context.Context) (State, error) {
	sources := t.sources[:0:0]
	paths := t.paths[:0:0]
	for i, src := range t.sources {
		info, err := os.Stat(src)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if t.group.AllowMissing {
					t.tolerate(ctx, src)
					continue
				}
				return StateFailed, errors.Errorf("%w: %s", ErrSourceMissing, src)
			}
			return StateFailed, errors.Errorf("stat source: %w", err)
		}
		t.srcInfos = append(t.srcInfos, info)
		sources = append(sources, src)
		paths = append(paths, t.paths[i])
	}
	t.sources, t.paths = sources, paths

	if info, err := os.Stat(t.dest); err == nil {
		t.destInfo = info
	}
	return StateCheckLazy, nil
}

func (t *concatTask) checkLazy(ctx context.Context) (State, error) {
	if !t.run.opts.Lazy || t.destInfo == nil {
		return StateEnsureDirectory, nil
	}
	for _, info := range t.srcInfos {
		if info.ModTime().After(t.destInfo.ModTime()) {
			return StateEnsureDirectory, nil
		}
	}
	zerolog.Ctx(ctx).Debug().Msg("destination is up to date")
	t.run.tally.AddLazy()
	t.emit(ctx, status.EventLazy)
	return StateDone, nil
}

func (t *concatTask) ensureDirectory(ctx context.Context) (State, error) {
	created, err := t.run.dirs.Ensure(ctx, filepath.Dir(t.dest))
	if err != nil {
		return StateFailed, err
	}
	if created {
		t.run.tally.AddDir()
	}
	return StateMerge, nil
}

func (t *concatTask) merge(ctx context.Context) (State, error) {
	unlock, err := t.run.acquire(ctx, t.dest)
	if err != nil {
		return StateFailed, err
	}
	defer unlock()

	p := transform.Pipeline{
		Stages: t.run.concatStages(ctx, t.sources, t.dest),
		Banner: t.run.opts.Banner,
		Footer: t.run.opts.Footer,
	}
	err = workspace.WriteFile(ctx, t.dest, t.run.opts.Mode, func(w io.Writer) error {
		body := newJoinReader(t.paths, t.run.opts.Separator)
		defer body.Close()
		return p.Run(ctx, w, body)
	})
	if err != nil {
		return StateFailed, err
	}

	t.run.tally.AddConcat()
	t.run.tally.AddFile()
	t.emit(ctx, status.EventConcat)
	return StateDone, nil
}

func (t *concatTask) emit(ctx context.Context, kind status.EventKind) {
	t.run.sink.FileOperation(ctx, status.Event{
		Kind:     kind,
		Sources:  t.group.Sources,
		Dest:     t.dest,
		Duration: time.Since(t.start),
	})
}
