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
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/transfo/pkg/config"
	"github.com/walteh/transfo/pkg/expand"
	"github.com/walteh/transfo/pkg/log"
	"github.com/walteh/transfo/pkg/operation"
	"github.com/walteh/transfo/pkg/status"
)

type runOpts struct {
	*rootOpts
	concurrency int
	lazy        bool
	verbose     bool
	metricsOut  string
}

func newRunCmd(root *rootOpts) *cobra.Command {
	opts := &runOpts{rootOpts: root}

	cmd := &cobra.Command{
		Use:   "run [target...]",
		Short: "Build targets",
		Long: `Run builds the named targets, or every target in the config file.
For each target it will:
1. Expand the source patterns into destination groups
2. Copy single sources through the transform stages
3. Stage and merge the sources of concatenated destinations`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}

	cmd.Flags().IntVar(&opts.concurrency, "concurrency", config.DefaultConcurrency, "maximum number of parallel tasks")
	cmd.Flags().BoolVar(&opts.lazy, "lazy", false, "skip destinations that are newer than their sources")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print every file operation")
	cmd.Flags().StringVar(&opts.metricsOut, "metrics-out", "", "write run counters to this file in prometheus text format")
	return cmd
}

func (o *runOpts) run(cmd *cobra.Command, names []string) error {
	ctx := cmd.Context()
	user := newUserLogger(ctx, cmd.OutOrStdout())

	targets, err := o.loadTargets(ctx, names)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	console := log.New(cmd.OutOrStdout(), o.verbose)
	ctx = log.NewContext(ctx, console)

	err = o.runTargets(ctx, cmd, console, reg, targets)
	if o.metricsOut != "" {
		if merr := status.WriteMetrics(o.metricsOut, reg); merr != nil {
			err = errors.Join(err, errors.Errorf("writing metrics: %w", merr))
		}
	}
	if err != nil {
		return err
	}

	user.Success(fmt.Sprintf("Built %s", plural(len(targets), "target")))
	return nil
}

func (o *runOpts) runTargets(ctx context.Context, cmd *cobra.Command, console *log.Logger, reg prometheus.Registerer, targets []config.Resolved) error {
	for _, target := range targets {
		settings := o.override(cmd, target.Options)
		tctx := zerolog.Ctx(ctx).With().Str("target", target.Name).Logger().WithContext(ctx)

		console.Header(tctx, fmt.Sprintf("running target %s", target.Name))

		pairs, err := expand.All(tctx, target.Files)
		if err != nil {
			return errors.Errorf("target %q: %w", target.Name, err)
		}

		runner, err := operation.New(operation.Options{Settings: settings, Sink: console, Registerer: reg})
		if err != nil {
			return errors.Errorf("target %q: %w", target.Name, err)
		}

		summary, err := runner.Run(tctx, pairs)
		if err != nil {
			return errors.Errorf("target %q: %w", target.Name, err)
		}
		console.Summary(tctx, *summary)
	}
	return nil
}

// override applies the flags the user set explicitly on top of the target's options
func (o *runOpts) override(cmd *cobra.Command, settings config.Options) config.Options {
	if cmd.Flags().Changed("concurrency") {
		settings.Concurrency = o.concurrency
	}
	if cmd.Flags().Changed("lazy") {
		settings.Lazy = o.lazy
	}
	return settings
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
