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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrSourceMissing means a required source could not be stat'd
	ErrSourceMissing = errors.Base("source missing")
	// ErrNotFileOrDirectory means a source is a socket, device or similar; its task is skipped
	ErrNotFileOrDirectory = errors.Base("source is neither a file nor a directory")
	// ErrStagingFailed means a concat source could not be staged
	ErrStagingFailed = errors.Base("staging failed")
	// ErrWriteConflict means another task holds the destination; the task waits for it
	ErrWriteConflict = errors.Base("destination is being written")
	// ErrTypeMismatch means the destination exists with the other type; it is removed
	ErrTypeMismatch = errors.Base("destination type differs from source")
)

// 💥 TaskError names the path and step a task failed at
type TaskError struct {
	Path string
	Dest string
	Step State
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s %s -> %s: %v", e.Step, e.Path, e.Dest, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
