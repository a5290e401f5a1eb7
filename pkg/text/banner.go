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
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ✂️ StripMode selects which leading comment banners StripBanner removes
type StripMode string

const (
	// StripNone leaves content untouched
	StripNone StripMode = ""
	// StripAuto removes a leading /* ... */ block unless it starts with /*!
	StripAuto StripMode = "auto"
	// StripLine removes leading // comment lines
	StripLine StripMode = "line"
	// StripBlock removes a leading /* ... */ block, including /*! ones
	StripBlock StripMode = "block"
	// StripAll combines StripLine and StripBlock
	StripAll StripMode = "all"
)

// ParseStripMode parses a configured strip mode; "true" is an alias for auto
func ParseStripMode(s string) (StripMode, error) {
	switch m := StripMode(strings.ToLower(strings.TrimSpace(s))); m {
	case StripNone, "false":
		return StripNone, nil
	case "true":
		return StripAuto, nil
	case StripAuto, StripLine, StripBlock, StripAll:
		return m, nil
	default:
		return StripNone, errors.Errorf("unknown strip mode %q", s)
	}
}

const (
	lineBanner       = `(?:.*//.*\r?\n)*\s*`
	anyBlockBanner   = `/\*[\s\S]*?\*/`
	plainBlockBanner = `/\*[^!][\s\S]*?\*/`
)

var stripPatterns = map[StripMode]*regexp.Regexp{
	StripAuto:  bannerPattern(plainBlockBanner),
	StripLine:  bannerPattern(lineBanner),
	StripBlock: bannerPattern(anyBlockBanner),
}

func bannerPattern(alternatives ...string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*(?:` + strings.Join(alternatives, "|") + `)\s*`)
}

// 🧹 StripBanner removes the leading comment banner of src according to mode
func StripBanner(src string, mode StripMode) string {
	if mode == StripAll {
		return StripBanner(StripBanner(src, StripLine), StripBlock)
	}
	re, ok := stripPatterns[mode]
	if !ok {
		return src
	}
	loc := re.FindStringIndex(src)
	if loc == nil {
		return src
	}
	return src[loc[1]:]
}
