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
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/singleflight"

	"github.com/walteh/transfo/pkg/pathutil"
)

// 📁 DirCache remembers which directories this run already created
type DirCache struct {
	mode os.FileMode

	mu    sync.Mutex
	known map[string]bool
	group singleflight.Group
}

// NewDirCache creates an empty cache that makes directories with mode
func NewDirCache(mode os.FileMode) *DirCache {
	return &DirCache{mode: mode, known: make(map[string]bool)}
}

// Known reports whether dir was created or confirmed during this run
func (c *DirCache) Known(dir string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.known[pathutil.Key(dir)]
}

// Forget drops dir, e.g. after the path was removed to change its type
func (c *DirCache) Forget(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.known, pathutil.Key(dir))
}

// Mark records dir as existing without creating it
func (c *DirCache) Mark(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known[pathutil.Key(dir)] = true
}

// 🔨 Ensure creates dir with its parents unless it already exists.
// Concurrent callers for the same dir share one mkdir; created is true only for the caller that ran it.
func (c *DirCache) Ensure(ctx context.Context, dir string) (created bool, err error) {
	key := pathutil.Key(dir)
	if key == "" || key == "." {
		return false, nil
	}
	if c.Known(key) {
		return false, nil
	}

	_, err, _ = c.group.Do(key, func() (any, error) {
		if c.Known(key) {
			return nil, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if info, err := os.Stat(key); err == nil && info.IsDir() {
			c.Mark(key)
			return nil, nil
		}
		zerolog.Ctx(ctx).Debug().Str("dir", key).Msg("making directory")
		if err := os.MkdirAll(key, c.mode); err != nil {
			return nil, errors.Errorf("making directory %s: %w", key, err)
		}
		c.Mark(key)
		created = true
		return nil, nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
