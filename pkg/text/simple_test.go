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

package text

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleTextReplacer_ReplaceText(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		content      string
		rules        []ReplacementRule
		want         string
		wantCount    int
		wantModified bool
	}{
		{
			name:    "simple_replacement",
			path:    "src/a.js",
			content: "Hello World",
			rules: []ReplacementRule{
				{FromText: "World", ToText: "Universe"},
			},
			want:         "Hello Universe",
			wantCount:    1,
			wantModified: true,
		},
		{
			name:    "multiple_replacements",
			path:    "src/a.js",
			content: "Hello World World",
			rules: []ReplacementRule{
				{FromText: "World", ToText: "Universe"},
			},
			want:         "Hello Universe Universe",
			wantCount:    2,
			wantModified: true,
		},
		{
			name:    "multiple_rules",
			path:    "src/a.js",
			content: "Hello World",
			rules: []ReplacementRule{
				{FromText: "Hello", ToText: "Hi"},
				{FromText: "World", ToText: "Universe"},
			},
			want:         "Hi Universe",
			wantCount:    2,
			wantModified: true,
		},
		{
			name:    "file_filter_matches",
			path:    "src/lib/a.js",
			content: "Hello World",
			rules: []ReplacementRule{
				{FromText: "World", ToText: "Universe", FileFilterGlob: "src/**/*.js"},
			},
			want:         "Hello Universe",
			wantCount:    1,
			wantModified: true,
		},
		{
			name:    "file_filter_excludes",
			path:    "src/lib/a.css",
			content: "Hello World",
			rules: []ReplacementRule{
				{FromText: "World", ToText: "Universe", FileFilterGlob: "src/**/*.js"},
			},
			want: "Hello World",
		},
		{
			name:    "no_match",
			path:    "a.txt",
			content: "Hello World",
			rules: []ReplacementRule{
				{FromText: "Goodbye", ToText: "Hi"},
			},
			want: "Hello World",
		},
		{
			name:    "empty_content",
			path:    "a.txt",
			content: "",
			rules: []ReplacementRule{
				{FromText: "World", ToText: "Universe"},
			},
			want: "",
		},
		{
			name:    "empty_rules",
			path:    "a.txt",
			content: "Hello World",
			rules:   []ReplacementRule{},
			want:    "Hello World",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			replacer := NewSimpleTextReplacer()
			result, err := replacer.ReplaceText(
				context.Background(),
				tt.path,
				strings.NewReader(tt.content),
				tt.rules,
			)

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.content, string(result.OriginalContent))
			assert.Equal(t, tt.want, string(result.ModifiedContent))
			assert.Equal(t, tt.wantCount, result.ReplacementCount)
			assert.Equal(t, tt.wantModified, result.WasModified)
		})
	}
}

func TestSimpleTextReplacer_ValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		rules     []ReplacementRule
		wantError string
	}{
		{
			name: "valid_rules",
			rules: []ReplacementRule{
				{FromText: "foo", ToText: "bar", FileFilterGlob: "*.txt"},
				{FromText: "baz", ToText: "qux"},
			},
		},
		{
			name: "missing_from_text",
			rules: []ReplacementRule{
				{ToText: "bar", FileFilterGlob: "*.txt"},
			},
			wantError: "from is required",
		},
		{
			name: "invalid_file_filter",
			rules: []ReplacementRule{
				{FromText: "foo", ToText: "bar", FileFilterGlob: "src/[a-"},
			},
			wantError: "invalid files pattern",
		},
		{
			name:  "empty_rules",
			rules: []ReplacementRule{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			replacer := NewSimpleTextReplacer()
			err := replacer.ValidateRules(tt.rules)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestMatchesAny(t *testing.T) {
	ctx := context.Background()
	assert.True(t, MatchesAny(ctx, []string{"*.md", "src/**"}, "src/a/b.js"))
	assert.False(t, MatchesAny(ctx, []string{"*.md"}, "src/a/b.js"))
	assert.False(t, MatchesAny(ctx, nil, "src/a/b.js"))
	assert.True(t, Matches(ctx, "", "anything"))
	assert.True(t, Matches(ctx, "src/lib", "src/lib/"))
}
