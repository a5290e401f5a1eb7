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

// Package transform composes byte-stream stages around a file body.
//
// A stage reads its input to EOF and writes its output; the pipeline wires
// stages together with io.Pipe so a file flows through at bounded memory unless
// a stage chooses to buffer (see Buffered). Banner and footer are written
// around the transformed body, outside the stages.
package transform

import (
	"context"
	"io"
)

// 🔌 Transform is one stage of a pipeline
type Transform interface {
	// Transform reads r to EOF and writes the transformed bytes to w
	Transform(ctx context.Context, w io.Writer, r io.Reader) error
}

// Func adapts a function to the Transform interface
type Func func(ctx context.Context, w io.Writer, r io.Reader) error

// Transform implements Transform
func (f Func) Transform(ctx context.Context, w io.Writer, r io.Reader) error {
	return f(ctx, w, r)
}

// Passthrough copies its input unchanged
var Passthrough Transform = Func(func(ctx context.Context, w io.Writer, r io.Reader) error {
	_, err := io.Copy(w, NewContextReader(ctx, r))
	return err
})

// RewriteFunc rewrites a whole body at once
type RewriteFunc func(ctx context.Context, content []byte) ([]byte, error)

// 📦 Buffered collects the whole input, rewrites it, and writes the result
func Buffered(fn RewriteFunc) Transform {
	return Func(func(ctx context.Context, w io.Writer, r io.Reader) error {
		body, err := io.ReadAll(NewContextReader(ctx, r))
		if err != nil {
			return err
		}
		out, err := fn(ctx, body)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	})
}

// contextReader fails reads once its context is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

// NewContextReader wraps r so that reads stop with ctx.Err() after cancellation
func NewContextReader(ctx context.Context, r io.Reader) io.Reader {
	return &contextReader{ctx: ctx, r: r}
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
