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
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/walteh/transfo/pkg/config"
	"github.com/walteh/transfo/pkg/status"
	"github.com/walteh/transfo/pkg/transform"
)

// recordingSink keeps everything a run reports
type recordingSink struct {
	mu       sync.Mutex
	warnings []string
	errs     []error
	events   []status.Event
}

func (s *recordingSink) Warn(ctx context.Context, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, msg)
}

func (s *recordingSink) Error(ctx context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *recordingSink) FileOperation(ctx context.Context, ev status.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) kinds(kind status.EventKind) []status.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []status.Event
	for _, ev := range s.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// mockSink is a testify mock of Sink
type mockSink struct {
	mock.Mock
}

func (m *mockSink) Warn(ctx context.Context, msg string) {
	m.Called(ctx, msg)
}

func (m *mockSink) Error(ctx context.Context, err error) {
	m.Called(ctx, err)
}

func (m *mockSink) FileOperation(ctx context.Context, ev status.Event) {
	m.Called(ctx, ev)
}

func newRunner(t *testing.T, opts config.Options, sink Sink) *Runner {
	t.Helper()
	r, err := New(Options{Settings: opts, Sink: sink})
	require.NoError(t, err)
	return r
}

// upper is a streaming stage
var upper = transform.Func(func(ctx context.Context, w io.Writer, r io.Reader) error {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanBytes)
	for s.Scan() {
		if _, err := w.Write(bytes.ToUpper(s.Bytes())); err != nil {
			return err
		}
	}
	return s.Err()
})

func upperFactory(src, dest string, opts config.Options) transform.Transform {
	return upper
}

func wrap(prefix, suffix string) transform.Transform {
	return transform.Buffered(func(ctx context.Context, content []byte) ([]byte, error) {
		return []byte(prefix + string(content) + suffix), nil
	})
}

func stat(t *testing.T, name string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(name)
	require.NoError(t, err)
	return info
}
