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

package status

import (
	"fmt"
	"strings"
	"time"
)

// 🏷️ EventKind says what happened to a destination
type EventKind string

const (
	EventDirectory EventKind = "directory"
	EventCopy      EventKind = "copy"
	EventConcat    EventKind = "concat"
	EventStage     EventKind = "stage"
	EventLazy      EventKind = "cached"
	EventSkip      EventKind = "skipped"
	EventRemove    EventKind = "removed"
	EventFail      EventKind = "failed"
)

// 🎯 Event describes one finished task
type Event struct {
	Kind     EventKind
	Sources  []string
	Dest     string
	Stages   int
	Duration time.Duration
}

// Source returns the sources joined for display
func (e Event) Source() string {
	return strings.Join(e.Sources, ", ")
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// 📝 FormatSummary renders the end of run line
func FormatSummary(c Counts) string {
	var b strings.Builder
	b.WriteString("Created " + plural(c.Dirs, "directory", "directories"))
	b.WriteString(", copied " + plural(c.Files, "file", "files"))
	b.WriteString(", concatenated " + plural(c.Concats, "file", "files"))
	if c.Lazy > 0 {
		b.WriteString(", used cache for " + plural(c.Lazy, "file", "files") + " (lazy)")
	}
	return b.String()
}
