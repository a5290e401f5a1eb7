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

// Package testutils holds fixtures shared by the package tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a debug logger that writes to the test log
func Context(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

// 📁 WorkDir moves the test into a fresh temporary directory holding files.
// Keys are slash separated paths relative to the directory.
func WorkDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	for name, content := range files {
		WriteFile(t, name, content)
	}
	return dir
}

// chdir changes the working directory to dir and restores it when the test
// ends (stand-in for testing.T.Chdir, which needs go1.24)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restoring working directory: %v", err)
		}
	})
}

// WriteFile writes content to name, creating parent directories
func WriteFile(t *testing.T, name, content string) {
	t.Helper()
	name = filepath.FromSlash(name)
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

// ReadFile returns the content of name
func ReadFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.FromSlash(name))
	require.NoError(t, err)
	return string(data)
}
