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
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestDirCacheEnsure(t *testing.T) {
	ctx := testContext(t)
	dir := filepath.Join(t.TempDir(), "a", "b")
	cache := NewDirCache(0o755)

	created, err := cache.Ensure(ctx, dir)
	require.NoError(t, err)
	assert.True(t, created, "first call should create")
	assert.DirExists(t, dir)
	assert.True(t, cache.Known(dir+"/"), "trailing separator should not matter")

	created, err = cache.Ensure(ctx, dir)
	require.NoError(t, err)
	assert.False(t, created, "second call should hit the cache")

	cache.Forget(dir)
	assert.False(t, cache.Known(dir))
	created, err = cache.Ensure(ctx, dir)
	require.NoError(t, err)
	assert.False(t, created, "existing directory is marked, not made")
	assert.True(t, cache.Known(dir))

	cache.Forget(dir)
	require.NoError(t, os.RemoveAll(dir))
	created, err = cache.Ensure(ctx, dir)
	require.NoError(t, err)
	assert.True(t, created, "forgotten and removed directory is made again")
}

func TestDirCacheEnsureConcurrent(t *testing.T) {
	ctx := testContext(t)
	dir := filepath.Join(t.TempDir(), "shared")
	cache := NewDirCache(0o755)

	var creators atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := cache.Ensure(ctx, dir)
			assert.NoError(t, err)
			if created {
				creators.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), creators.Load(), "exactly one caller should create the directory")
}

func TestDirCacheEnsureCurrentDir(t *testing.T) {
	created, err := NewDirCache(0o755).Ensure(testContext(t), ".")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestDirCacheEnsureFailure(t *testing.T) {
	ctx := testContext(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewDirCache(0o755).Ensure(ctx, filepath.Join(file, "sub"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "making directory")
}

func TestLocksExclusive(t *testing.T) {
	ctx := testContext(t)
	locks := NewLocks()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.Lock(ctx, "out/a.txt")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load(), "only one holder at a time")
}

func TestLocksIndependentDestinations(t *testing.T) {
	ctx := testContext(t)
	locks := NewLocks()

	unlockA, err := locks.Lock(ctx, "out/a.txt")
	require.NoError(t, err)
	defer unlockA()

	unlockB, ok := locks.TryLock("out/b.txt")
	require.True(t, ok, "other destinations are not blocked")
	unlockB()

	_, ok = locks.TryLock("out//a.txt")
	assert.False(t, ok, "same destination after cleaning is held")
}

func TestLocksContextCancelled(t *testing.T) {
	locks := NewLocks()
	unlock, err := locks.Lock(testContext(t), "x")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(testContext(t), 10*time.Millisecond)
	defer cancel()
	_, err = locks.Lock(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	again, ok := locks.TryLock("x")
	require.True(t, ok, "double unlock releases once")
	again()
}

func TestWriteFile(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")

	err := WriteFile(ctx, dest, 0o600, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be gone")
}

func TestWriteFileFailureKeepsDestination(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	boom := errors.New("boom")
	err := WriteFile(ctx, dest, 0o644, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be removed")
}

func TestRemoveAll(t *testing.T) {
	ctx := testContext(t)
	dir := filepath.Join(t.TempDir(), "tree")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))

	require.NoError(t, RemoveAll(ctx, dir))
	assert.NoDirExists(t, dir)
	require.NoError(t, RemoveAll(ctx, dir), "missing path is fine")
}
