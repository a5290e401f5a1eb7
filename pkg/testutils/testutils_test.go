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

package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkDir(t *testing.T) {
	dir := WorkDir(t, map[string]string{
		"a.txt":       "a",
		"deep/b/c.md": "c",
	})

	wd, err := os.Getwd()
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	wdResolved, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	assert.Equal(t, resolved, wdResolved, "test should run inside the new directory")

	assert.Equal(t, "a", ReadFile(t, "a.txt"))
	assert.Equal(t, "c", ReadFile(t, "deep/b/c.md"))
}

func TestContext(t *testing.T) {
	ctx := Context(t)
	logger := zerolog.Ctx(ctx)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
