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
	"sync"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/semaphore"

	"github.com/walteh/transfo/pkg/pathutil"
)

// 🔒 Locks hands out one exclusive writer slot per destination.
// Waiters queue in arrival order and give up when their context ends.
type Locks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewLocks creates an empty lock set
func NewLocks() *Locks {
	return &Locks{sems: make(map[string]*semaphore.Weighted)}
}

func (l *Locks) get(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}
	return sem
}

// Lock waits for exclusive access to dest. The returned func releases it.
func (l *Locks) Lock(ctx context.Context, dest string) (func(), error) {
	sem := l.get(pathutil.Key(dest))
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Errorf("waiting for write lock on %s: %w", dest, err)
	}
	var once sync.Once
	return func() { once.Do(func() { sem.Release(1) }) }, nil
}

// TryLock takes the lock on dest only if nobody holds it
func (l *Locks) TryLock(dest string) (func(), bool) {
	sem := l.get(pathutil.Key(dest))
	if !sem.TryAcquire(1) {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(func() { sem.Release(1) }) }, true
}
