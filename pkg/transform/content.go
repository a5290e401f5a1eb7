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
	"bytes"
	"context"
	"io"
	"text/template"

	"github.com/rs/zerolog"
	"github.com/walteh/transfo/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ProcessFunc rewrites the whole content of src on its way to dest
type ProcessFunc func(ctx context.Context, content, src, dest string) (string, error)

// StripFunc removes a leading comment banner according to mode
type StripFunc func(content string, mode text.StripMode) string

// 📝 ProcessContent runs fn over the whole content unless src matches one of the exclude patterns
func ProcessContent(fn ProcessFunc, exclude []string, src, dest string) Transform {
	return Func(func(ctx context.Context, w io.Writer, r io.Reader) error {
		if text.MatchesAny(ctx, exclude, src) {
			zerolog.Ctx(ctx).Debug().Str("src", src).Msg("content processing excluded by pattern")
			return Passthrough.Transform(ctx, w, r)
		}
		return Buffered(func(ctx context.Context, content []byte) ([]byte, error) {
			out, err := fn(ctx, string(content), src, dest)
			if err != nil {
				return nil, errors.Errorf("processing content of %s: %w", src, err)
			}
			return []byte(out), nil
		}).Transform(ctx, w, r)
	})
}

// ProcessOptions configures the concat-style process stage
type ProcessOptions struct {
	// Func rewrites the content; takes precedence over Data
	Func ProcessFunc
	// Data, when non-nil, renders the content as a text/template with this data
	Data map[string]any
	// Strip removes banners after processing; defaults to text.StripBanner
	Strip StripFunc
	// StripMode selects which banners Strip removes
	StripMode text.StripMode
}

// Enabled reports whether the stage would change anything
func (o ProcessOptions) Enabled() bool {
	return o.Func != nil || o.Data != nil || o.StripMode != text.StripNone
}

// ✂️ Process rewrites the whole content with a function or template, then strips banners
func Process(opts ProcessOptions, src, dest string) Transform {
	strip := opts.Strip
	if strip == nil {
		strip = text.StripBanner
	}
	return Buffered(func(ctx context.Context, content []byte) ([]byte, error) {
		result := string(content)
		switch {
		case opts.Func != nil:
			out, err := opts.Func(ctx, result, src, dest)
			if err != nil {
				return nil, errors.Errorf("processing %s: %w", src, err)
			}
			result = out
		case opts.Data != nil:
			out, err := RenderTemplate(src, result, opts.Data)
			if err != nil {
				return nil, err
			}
			result = out
		}
		if opts.StripMode != text.StripNone {
			result = strip(result, opts.StripMode)
		}
		return []byte(result), nil
	})
}

// RenderTemplate executes content as a text/template named after src
func RenderTemplate(src, content string, data map[string]any) (string, error) {
	tmpl, err := template.New(src).Option("missingkey=error").Parse(content)
	if err != nil {
		return "", errors.Errorf("parsing template %s: %w", src, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Errorf("rendering template %s: %w", src, err)
	}
	return buf.String(), nil
}

// 🔄 Replace applies the replacement rules whose file filter matches src
func Replace(replacer text.TextReplacer, rules []text.ReplacementRule, src string) Transform {
	if len(rules) == 0 {
		return nil
	}
	return Func(func(ctx context.Context, w io.Writer, r io.Reader) error {
		result, err := replacer.ReplaceText(ctx, src, NewContextReader(ctx, r), rules)
		if err != nil {
			return errors.Errorf("replacing text in %s: %w", src, err)
		}
		if result.WasModified {
			zerolog.Ctx(ctx).Debug().Str("src", src).Int("replacements", result.ReplacementCount).Msg("applied replacements")
		}
		_, err = w.Write(result.ModifiedContent)
		return err
	})
}
