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
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.TraceLevel)
	return logger.WithContext(context.Background())
}

// upper streams its input upper-cased, chunk by chunk
var upper = Func(func(ctx context.Context, w io.Writer, r io.Reader) error {
	buf := make([]byte, 3)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(bytes.ToUpper(buf[:n])); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
})

func suffix(s string) Transform {
	return Buffered(func(ctx context.Context, content []byte) ([]byte, error) {
		return append(content, s...), nil
	})
}

func TestPipelineRun(t *testing.T) {
	tests := []struct {
		name     string
		pipeline Pipeline
		body     string
		want     string
	}{
		{
			name: "no_stages_is_verbatim",
			body: "hello",
			want: "hello",
		},
		{
			name:     "banner_and_footer",
			pipeline: Pipeline{Banner: "B\n", Footer: "\nF"},
			body:     "foo;bar",
			want:     "B\nfoo;bar\nF",
		},
		{
			name:     "banner_with_empty_body",
			pipeline: Pipeline{Banner: "B", Footer: "F"},
			body:     "",
			want:     "BF",
		},
		{
			name:     "stages_in_declared_order",
			pipeline: Pipeline{Stages: []Transform{suffix("-1"), upper, suffix("-2")}},
			body:     "abc",
			want:     "ABC-1-2",
		},
		{
			name:     "nil_stages_are_dropped",
			pipeline: Pipeline{Stages: []Transform{nil, upper, nil}},
			body:     "abc",
			want:     "ABC",
		},
		{
			name:     "stages_do_not_touch_banner",
			pipeline: Pipeline{Stages: []Transform{upper}, Banner: "b:", Footer: ":f"},
			body:     "xyz",
			want:     "b:XYZ:f",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := tt.pipeline.Run(testContext(t), &out, strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestPipelineLen(t *testing.T) {
	assert.Equal(t, 2, Pipeline{Stages: []Transform{nil, upper, Passthrough}}.Len())
	assert.Equal(t, 0, Pipeline{}.Len())
}

func TestPipelineStageError(t *testing.T) {
	boom := errors.New("boom")
	failing := Func(func(ctx context.Context, w io.Writer, r io.Reader) error {
		return boom
	})

	for _, stages := range [][]Transform{
		{failing},
		{upper, failing},
		{failing, upper},
		{upper, failing, upper},
	} {
		var out bytes.Buffer
		err := Pipeline{Stages: stages}.Run(testContext(t), &out, strings.NewReader(strings.Repeat("x", 1<<16)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, boom), "got %v", err)
	}
}

func TestPipelineEarlyFinishingStage(t *testing.T) {
	firstLine := Func(func(ctx context.Context, w io.Writer, r io.Reader) error {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		_, err = io.WriteString(w, line)
		return err
	})

	body := "first\n" + strings.Repeat("rest of the file\n", 10000)
	var out bytes.Buffer
	err := Pipeline{Stages: []Transform{upper, firstLine}}.Run(testContext(t), &out, strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "FIRST\n", out.String())
}

func TestPipelineLargeBodyStreams(t *testing.T) {
	body := strings.Repeat("abcdefgh", 1<<17)
	var out bytes.Buffer
	err := Pipeline{Stages: []Transform{upper, Passthrough, upper}}.Run(testContext(t), &out, strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, len(body), out.Len())
	assert.Equal(t, strings.ToUpper(body), out.String())
}

func TestPipelineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	var out bytes.Buffer
	err := Pipeline{Stages: []Transform{upper}}.Run(ctx, &out, strings.NewReader("abc"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
