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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/transfo/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 35 // Base width for destination
	kindWidth  = 10 // Width for event kind
)

// 🎯 Logger prints run progress to a console and mirrors it to the context's zerolog logger
type Logger struct {
	console io.Writer
	verbose bool
	mu      sync.Mutex
	events  []status.Event
}

// 🏭 New creates a new logger. Per-file lines are printed only when verbose.
func New(console io.Writer, verbose bool) *Logger {
	return &Logger{
		console: console,
		verbose: verbose,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or a silent one
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, false)
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func symbolFor(kind status.EventKind) (rune, color.Attribute) {
	switch kind {
	case status.EventCopy, status.EventDirectory:
		return '✓', color.FgGreen
	case status.EventConcat:
		return '⊕', color.FgBlue
	case status.EventStage:
		return '•', color.FgCyan
	case status.EventLazy:
		return '⟳', color.FgHiBlack
	case status.EventRemove:
		return '✗', color.FgYellow
	case status.EventFail:
		return '✗', color.FgRed
	default:
		return '-', color.FgYellow
	}
}

// 📝 formatEvent formats a file event for display
func (l *Logger) formatEvent(ev status.Event) string {
	symbol, symbolColor := symbolFor(ev.Kind)
	return fmt.Sprintf("%*s%s %s %s %s",
		fileIndent, "",
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, ev.Dest),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", kindWidth, ev.Kind)),
		ev.Source())
}

// 📝 FileOperation records a finished task
func (l *Logger) FileOperation(ctx context.Context, ev status.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, ev)
	if l.verbose {
		fmt.Fprintln(l.console, l.formatEvent(ev))
	}

	zerolog.Ctx(ctx).Debug().
		Str("kind", string(ev.Kind)).
		Strs("src", ev.Sources).
		Str("dest", ev.Dest).
		Int("stages", ev.Stages).
		Dur("duration", ev.Duration).
		Msg("file operation")
}

// Events returns a copy of every recorded event
func (l *Logger) Events() []status.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]status.Event(nil), l.events...)
}

// 📝 Header logs a header
func (l *Logger) Header(ctx context.Context, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("transfo")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	zerolog.Ctx(ctx).Info().Msg(msg)
}

// 📝 Warn logs a warning message
func (l *Logger) Warn(ctx context.Context, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	zerolog.Ctx(ctx).Warn().Msg(msg)
}

// 📝 Error logs a failure
func (l *Logger) Error(ctx context.Context, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(err.Error()))
	zerolog.Ctx(ctx).Error().Err(err).Msg("run failed")
}

// 📝 Summary logs the end of run line
func (l *Logger) Summary(ctx context.Context, s status.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(s.String()))
	zerolog.Ctx(ctx).Info().
		Int64("dirs", s.Dirs).
		Int64("files", s.Files).
		Int64("concats", s.Concats).
		Int64("lazy", s.Lazy).
		Dur("duration", s.Duration).
		Msg("run complete")
}

// 📝 Warnf logs a formatted warning message
func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.Warn(ctx, fmt.Sprintf(format, args...))
}
