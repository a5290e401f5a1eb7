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
	"bytes"
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

// joinReader reads files one after another with sep between them.
// Each file is opened only when the reader reaches it.
type joinReader struct {
	open []func() (io.ReadCloser, error)
	cur  io.ReadCloser
}

func newJoinReader(paths []string, sep string) *joinReader {
	j := &joinReader{}
	for i, p := range paths {
		p := p
		if i > 0 && sep != "" {
			j.open = append(j.open, func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader([]byte(sep))), nil
			})
		}
		j.open = append(j.open, func() (io.ReadCloser, error) {
			f, err := os.Open(p)
			if err != nil {
				return nil, errors.Errorf("opening staged source %s: %w", p, err)
			}
			return f, nil
		})
	}
	return j
}

func (j *joinReader) Read(p []byte) (int, error) {
	for {
		if j.cur == nil {
			if len(j.open) == 0 {
				return 0, io.EOF
			}
			next := j.open[0]
			j.open = j.open[1:]
			rc, err := next()
			if err != nil {
				return 0, err
			}
			j.cur = rc
		}
		n, err := j.cur.Read(p)
		if errors.Is(err, io.EOF) {
			_ = j.cur.Close()
			j.cur = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

// Close releases the file being read, if any
func (j *joinReader) Close() error {
	if j.cur == nil {
		return nil
	}
	err := j.cur.Close()
	j.cur = nil
	return err
}
