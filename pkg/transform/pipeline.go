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

package transform

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// errDownstreamDone is handed to an upstream stage when the stage after it stopped reading
var errDownstreamDone = errors.Base("downstream stage finished")

// 🧵 Pipeline writes Banner, the body passed through Stages in order, then Footer
type Pipeline struct {
	Stages []Transform
	Banner string
	Footer string
}

// 🏃 Run streams body through the pipeline into dst
func (p Pipeline) Run(ctx context.Context, dst io.Writer, body io.Reader) error {
	if p.Banner != "" {
		if _, err := io.WriteString(dst, p.Banner); err != nil {
			return errors.Errorf("writing banner: %w", err)
		}
	}

	if err := p.runStages(ctx, dst, body); err != nil {
		return err
	}

	if p.Footer != "" {
		if _, err := io.WriteString(dst, p.Footer); err != nil {
			return errors.Errorf("writing footer: %w", err)
		}
	}
	return nil
}

// Len returns the number of non-nil stages
func (p Pipeline) Len() int {
	return len(compact(p.Stages))
}

func (p Pipeline) runStages(ctx context.Context, dst io.Writer, body io.Reader) error {
	stages := compact(p.Stages)
	if len(stages) == 0 {
		if _, err := io.Copy(dst, NewContextReader(ctx, body)); err != nil {
			return errors.Errorf("copying body: %w", err)
		}
		return nil
	}

	zerolog.Ctx(ctx).Trace().Int("stages", len(stages)).Msg("running transform pipeline")

	g, gctx := errgroup.WithContext(ctx)
	in := NewContextReader(gctx, body)
	for i, stage := range stages {
		stage := stage
		src := in
		var out io.Writer = dst
		var pw *io.PipeWriter
		if i < len(stages)-1 {
			var pr *io.PipeReader
			pr, pw = io.Pipe()
			out = pw
			in = pr
		}

		idx := i
		g.Go(func() error {
			err := stage.Transform(gctx, out, src)

			// unblock whoever is writing to us, and whoever is reading from us
			if pr, ok := src.(*io.PipeReader); ok {
				if err != nil {
					pr.CloseWithError(err)
				} else {
					pr.CloseWithError(errDownstreamDone)
				}
			}
			if pw != nil {
				pw.CloseWithError(err)
			}

			if err != nil && !errors.Is(err, errDownstreamDone) {
				return errors.Errorf("transform stage %d: %w", idx, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func compact(stages []Transform) []Transform {
	out := make([]Transform, 0, len(stages))
	for _, s := range stages {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
