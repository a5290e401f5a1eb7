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

package operation

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/transfo/pkg/config"
	"github.com/walteh/transfo/pkg/status"
)

// 📣 Sink receives what a run has to tell its host
type Sink interface {
	// Warn reports a problem that does not fail the run
	Warn(ctx context.Context, msg string)
	// Error reports the failure of the run
	Error(ctx context.Context, err error)
	// FileOperation reports a finished task
	FileOperation(ctx context.Context, ev status.Event)
}

// 🔧 Options contains configuration for the runner
type Options struct {
	// Settings control every run
	Settings config.Options
	// Sink receives warnings, errors and file events
	Sink Sink
	// Registerer, when set, receives the run counters
	Registerer prometheus.Registerer
}

// 🏃 Runner executes planned file groups. A Runner can be used for several runs.
type Runner struct {
	opts Options
}

// 🏭 New creates a new runner with the given options
func New(opts Options) (*Runner, error) {
	if opts.Sink == nil {
		return nil, errors.Errorf("sink is required")
	}
	if err := opts.Settings.Validate(); err != nil {
		return nil, errors.Errorf("validating options: %w", err)
	}
	return &Runner{opts: opts}, nil
}

// Settings returns the validated run settings
func (r *Runner) Settings() config.Options {
	return r.opts.Settings
}
