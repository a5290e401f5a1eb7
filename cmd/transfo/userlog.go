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
	"context"
	"io"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 userLogger prints the command level outcome
type userLogger struct {
	log zerolog.Logger
	out io.Writer
}

func newUserLogger(ctx context.Context, out io.Writer) *userLogger {
	return &userLogger{log: *zerolog.Ctx(ctx), out: out}
}

func (u *userLogger) printer(base pterm.PrefixPrinter, symbol string) *pterm.PrefixPrinter {
	return base.WithPrefix(pterm.Prefix{Text: symbol, Style: base.Prefix.Style}).WithWriter(u.out)
}

// 📦 Info reports progress between targets
func (u *userLogger) Info(msg string) {
	u.printer(pterm.Info, "📦").Println(msg)
	u.log.Info().Msg(msg)
}

// ✅ Success reports a finished command
func (u *userLogger) Success(msg string) {
	u.printer(pterm.Success, "✅").Println(msg)
	u.log.Info().Msg(msg)
}

// ❌ Failure reports a failed command with its cause
func (u *userLogger) Failure(msg string, err error) {
	if err == nil {
		u.printer(pterm.Warning, "⚠️").Println(msg)
		u.log.Warn().Msg(msg)
		return
	}
	u.printer(pterm.Error, "❌").Println(msg)
	pterm.Error.WithWriter(u.out).Println(err)
	u.log.Error().Err(err).Msg(msg)
}
