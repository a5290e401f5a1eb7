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

package workspace

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var tempSeq atomic.Uint64

// ✍️ WriteFile streams fill into a temp file beside dest and renames it over dest.
// The temp file is created with mode, subject to the process umask.
// On any error dest is left untouched and the temp file removed.
func WriteFile(ctx context.Context, dest string, mode os.FileMode, fill func(w io.Writer) error) (err error) {
	tempPath := filepath.Join(filepath.Dir(dest), fmt.Sprintf(".%s.%d-%d.tmp", filepath.Base(dest), os.Getpid(), tempSeq.Add(1)))

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if err = fill(f); err != nil {
		return errors.Errorf("writing %s: %w", dest, err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tempPath, dest); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("dest", dest).Str("mode", mode.String()).Msg("wrote file")
	return nil
}

// 🧹 RemoveAll deletes path and everything under it; a missing path is not an error
func RemoveAll(ctx context.Context, path string) error {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("removing path")
	if err := os.RemoveAll(path); err != nil {
		return errors.Errorf("removing %s: %w", path, err)
	}
	return nil
}
