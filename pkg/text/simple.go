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
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// SimpleTextReplacer implements TextReplacer using basic string replacement
type SimpleTextReplacer struct{}

// NewSimpleTextReplacer creates a new SimpleTextReplacer
func NewSimpleTextReplacer() *SimpleTextReplacer {
	return &SimpleTextReplacer{}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *SimpleTextReplacer) ReplaceText(ctx context.Context, path string, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
	}

	currentContent := string(originalContent)
	for _, rule := range rules {
		// Skip empty rules
		if rule.FromText == "" {
			continue
		}
		if !Matches(ctx, rule.FileFilterGlob, path) {
			continue
		}

		newContent := strings.ReplaceAll(currentContent, rule.FromText, rule.ToText)
		if newContent != currentContent {
			result.WasModified = true
			result.ReplacementCount += strings.Count(currentContent, rule.FromText)
		}

		currentContent = newContent
	}

	result.ModifiedContent = []byte(currentContent)
	return result, nil
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *SimpleTextReplacer) ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.FromText == "" {
			return errors.Errorf("rule %d: from is required", i)
		}
		if rule.FileFilterGlob != "" && !doublestar.ValidatePattern(rule.FileFilterGlob) {
			return errors.Errorf("rule %d: invalid files pattern %q", i, rule.FileFilterGlob)
		}
	}
	return nil
}

// 🔍 Matches reports whether path matches the doublestar pattern; an empty pattern matches everything
func Matches(ctx context.Context, pattern, path string) bool {
	if pattern == "" {
		return true
	}
	matched, err := doublestar.Match(pattern, strings.TrimRight(path, "/"))
	if err != nil {
		zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Str("path", path).Err(err).Msg("error matching pattern")
		return false
	}
	return matched
}

// 🔍 MatchesAny reports whether path matches any of the patterns
func MatchesAny(ctx context.Context, patterns []string, path string) bool {
	for _, p := range patterns {
		if p != "" && Matches(ctx, p, path) {
			return true
		}
	}
	return false
}
