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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/transfo/pkg/config"
)

// rootOpts holds the flags shared by every command
type rootOpts struct {
	configFile string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:   "transfo",
		Short: "Copy, transform and concatenate files",
		Long: `transfo builds destination files from source files.
Each target in the config file maps source patterns to destinations.
A destination fed by several sources is a concatenation of their transformed contents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(opts.setupLogging(cmd.Context(), cmd.ErrOrStderr()))
		},
	}

	addRootFlags(cmd, opts)
	cmd.AddCommand(
		newRunCmd(opts),
		newCleanCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, opts *rootOpts) {
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", config.RCFile, "config file path")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")
}

// setupLogging attaches a zerolog logger to ctx based on flags
func (o *rootOpts) setupLogging(ctx context.Context, w io.Writer) context.Context {
	level := zerolog.WarnLevel
	if o.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

// loadTargets loads the config file and resolves the named targets, or all of them
func (o *rootOpts) loadTargets(ctx context.Context, names []string) ([]config.Resolved, error) {
	cfg, err := config.Load(ctx, o.configFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("config", cfg.Location()).Strs("targets", cfg.TargetNames()).Msg("loaded config")

	targets, err := cfg.Resolve(config.DefaultOptions(), names...)
	if err != nil {
		return nil, errors.Errorf("resolving targets: %w", err)
	}
	return targets, nil
}
