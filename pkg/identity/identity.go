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

// Package identity derives stable cache keys for source files.
//
// A key is a digest of the resolved absolute path and the last-modified time,
// so the same file at the same mtime always lands at the same cache path and
// a touched file lands somewhere new.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"gitlab.com/tozd/go/errors"
)

// ErrNotFound is returned when the path to identify does not exist
var ErrNotFound = errors.Base("source not found")

// KeySize is the length of a key in hex characters
const KeySize = sha256.Size * 2

// 🔑 Identify returns the cache key of path
func Identify(path string) (string, error) {
	abs, modTime, err := statAbs(path)
	if err != nil {
		return "", err
	}
	return Key(abs, modTime), nil
}

// 🧮 Key combines an absolute path and a modification time into a key
func Key(absPath string, modTime time.Time) string {
	sum := sha256.Sum256([]byte(absPath + "-" + modTime.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}

func statAbs(path string) (string, time.Time, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", time.Time{}, errors.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", time.Time{}, errors.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", time.Time{}, errors.Errorf("stat %s: %w", path, err)
	}
	return abs, info.ModTime(), nil
}

type entry struct {
	modTime time.Time
	key     string
}

// 🧠 Keyer memoizes keys for one run; a changed mtime invalidates the entry
type Keyer struct {
	cache *lru.Cache[string, entry]
}

// DefaultKeyerSize bounds the number of memoized paths
const DefaultKeyerSize = 4096

// 🏭 NewKeyer creates a Keyer holding at most size entries
func NewKeyer(size int) (*Keyer, error) {
	if size <= 0 {
		size = DefaultKeyerSize
	}
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, errors.Errorf("creating key cache: %w", err)
	}
	return &Keyer{cache: cache}, nil
}

// Identify behaves like the package-level Identify but reuses digests for unchanged files
func (k *Keyer) Identify(path string) (string, error) {
	abs, modTime, err := statAbs(path)
	if err != nil {
		return "", err
	}
	if e, ok := k.cache.Get(abs); ok && e.modTime.Equal(modTime) {
		return e.key, nil
	}
	key := Key(abs, modTime)
	k.cache.Add(abs, entry{modTime: modTime, key: key})
	return key, nil
}

// Len returns the number of memoized paths
func (k *Keyer) Len() int {
	return k.cache.Len()
}
