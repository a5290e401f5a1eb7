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

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/transfo/pkg/testutils"
)

const testConfig = `
options:
  separator: ";"
targets:
  - name: bundle
    files:
      - dest: dist/bundle.txt
        src: ["src/a.txt", "src/b.txt"]
  - name: copy
    options:
      banner: "# "
    files:
      - dest: dist/copy/
        cwd: src
        src: ["*.txt"]
        expand: true
`

func setupProject(t *testing.T) {
	t.Helper()
	testutils.WorkDir(t, map[string]string{
		".transforc": testConfig,
		"src/a.txt":  "alpha",
		"src/b.txt":  "beta",
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	t.Logf("stderr: %s", errOut.String())
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		missing []string
		output  []string
	}{
		{
			name: "all_targets",
			args: []string{"run"},
			want: map[string]string{
				"dist/bundle.txt": "alpha;beta",
				"dist/copy/a.txt": "# alpha",
				"dist/copy/b.txt": "# beta",
			},
			output: []string{"running target bundle", "running target copy", "Built 2 targets"},
		},
		{
			name:    "named_target",
			args:    []string{"run", "copy"},
			want:    map[string]string{"dist/copy/a.txt": "# alpha"},
			missing: []string{"dist/bundle.txt"},
			output:  []string{"copied 2 files", "Built 1 target"},
		},
		{
			name:   "verbose_lines",
			args:   []string{"run", "bundle", "--verbose", "--concurrency", "4"},
			want:   map[string]string{"dist/bundle.txt": "alpha;beta"},
			output: []string{"dist/bundle.txt", "concat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			setupProject(t)

			out, err := execute(t, tt.args...)
			require.NoError(t, err)

			for name, content := range tt.want {
				assert.Equal(t, content, testutils.ReadFile(t, name), "content of %s", name)
			}
			for _, name := range tt.missing {
				assert.NoFileExists(t, name)
			}
			for _, s := range tt.output {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestRunCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown_target", args: []string{"run", "nope"}, wantErr: "unknown target"},
		{name: "missing_config", args: []string{"run", "-c", "absent.yaml"}, wantErr: "loading config"},
		{name: "invalid_concurrency", args: []string{"run", "--concurrency", "-1"}, wantErr: "concurrency"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			setupProject(t)
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunCommandLazy(t *testing.T) {
	setupProject(t)

	_, err := execute(t, "run", "--lazy")
	require.NoError(t, err)

	out, err := execute(t, "run", "--lazy")
	require.NoError(t, err)
	assert.Contains(t, out, "used cache for 1 file (lazy)")
	assert.Contains(t, out, "used cache for 2 files (lazy)")
}

func TestRunCommandMetrics(t *testing.T) {
	setupProject(t)

	_, err := execute(t, "run", "--metrics-out", "metrics.prom")
	require.NoError(t, err)

	metrics := testutils.ReadFile(t, "metrics.prom")
	assert.Contains(t, metrics, "transfo_files_written_total 3")
	assert.Contains(t, metrics, "transfo_concatenations_total 1")
}

func TestCleanCommand(t *testing.T) {
	setupProject(t)

	_, err := execute(t, "run")
	require.NoError(t, err)
	require.FileExists(t, "dist/bundle.txt")

	out, err := execute(t, "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 3 destinations")
	assert.NoFileExists(t, "dist/bundle.txt")
	assert.NoFileExists(t, "dist/copy/a.txt")
	assert.NoDirExists(t, "tmp/transfo")
	assert.FileExists(t, "src/a.txt")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "transfo version info")

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)
}
