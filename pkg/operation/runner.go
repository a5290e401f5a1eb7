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
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/transfo/pkg/plan"
	"github.com/walteh/transfo/pkg/status"
	"github.com/walteh/transfo/pkg/workspace"
)

// CleanAdvice is sent to the sink after a failed run
const CleanAdvice = "Consider cleaning the destinations and the cache before running again"

// 🏃 Run plans pairs, copies and stages every group, then merges concat groups.
// The summary is returned even when the run fails.
func (r *Runner) Run(ctx context.Context, pairs []plan.FilePair) (*status.Summary, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	rn, err := r.newRun()
	if err != nil {
		return nil, err
	}

	groups, err := plan.NewPlanner(rn.sink).Plan(ctx, pairs)
	if err != nil {
		return rn.finish(ctx, start, errors.Errorf("planning: %w", err))
	}
	logger.Debug().Int("groups", len(groups)).Int("concurrency", rn.opts.Concurrency).Msg("starting run")

	copies, copyCtx := errgroup.WithContext(ctx)
	copies.SetLimit(rn.opts.Concurrency)

	var concats []*concatTask
	for _, g := range groups {
		if !g.IsConcat() {
			task := newCopyTask(rn, g.Sources[0], g.Dest, nil)
			copies.Go(func() error { return task.execute(copyCtx) })
			continue
		}

		staged := make([]*future, 0, len(g.Sources))
		for _, src := range g.Sources {
			f, task := rn.stage(ctx, src)
			staged = append(staged, f)
			if task == nil {
				continue
			}
			// staging failures reach the run through the concat tasks awaiting them
			copies.Go(func() error {
				_ = task.execute(copyCtx)
				return nil
			})
		}
		concats = append(concats, newConcatTask(rn, g, staged))
	}

	if err := copies.Wait(); err != nil {
		return rn.finish(ctx, start, err)
	}
	logger.Debug().Int("concats", len(concats)).Msg("copy queue drained")

	merges, mergeCtx := errgroup.WithContext(ctx)
	merges.SetLimit(rn.opts.Concurrency)
	for _, task := range concats {
		task := task
		merges.Go(func() error { return task.execute(mergeCtx) })
	}

	return rn.finish(ctx, start, merges.Wait())
}

func (r *run) finish(ctx context.Context, start time.Time, err error) (*status.Summary, error) {
	summary := &status.Summary{
		Counts:   r.tally.Counts(),
		Success:  err == nil,
		Err:      err,
		Duration: time.Since(start),
	}
	if err != nil {
		r.sink.Error(ctx, err)
		r.sink.Warn(ctx, CleanAdvice)
		return summary, err
	}
	zerolog.Ctx(ctx).Debug().Str("summary", summary.String()).Dur("duration", summary.Duration).Msg("run complete")
	return summary, nil
}

// 🧹 Clean removes every destination pairs would produce, then the cache directory
func (r *Runner) Clean(ctx context.Context, pairs []plan.FilePair) (int, error) {
	groups, err := plan.NewPlanner(r.opts.Sink).Plan(ctx, pairs)
	if err != nil {
		return 0, errors.Errorf("planning: %w", err)
	}

	removed := 0
	for _, g := range groups {
		if err := workspace.RemoveAll(ctx, g.Dest); err != nil {
			return removed, errors.Errorf("cleaning %s: %w", g.Dest, err)
		}
		r.opts.Sink.FileOperation(ctx, status.Event{Kind: status.EventRemove, Sources: g.Sources, Dest: g.Dest})
		removed++
	}

	if err := workspace.RemoveAll(ctx, r.opts.Settings.Cache); err != nil {
		return removed, errors.Errorf("cleaning cache: %w", err)
	}
	r.opts.Sink.FileOperation(ctx, status.Event{Kind: status.EventRemove, Dest: r.opts.Settings.Cache})
	return removed, nil
}
