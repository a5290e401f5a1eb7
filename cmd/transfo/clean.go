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
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/transfo/pkg/expand"
	"github.com/walteh/transfo/pkg/log"
	"github.com/walteh/transfo/pkg/operation"
)

func newCleanCmd(root *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [target...]",
		Short: "Remove built destinations and the cache",
		Long: `Clean removes what run would produce for the named targets, or every target.
It will:
1. Remove each destination the target's patterns resolve to
2. Remove the target's cache directory
Sources are never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user := newUserLogger(ctx, cmd.OutOrStdout())

			targets, err := root.loadTargets(ctx, args)
			if err != nil {
				return err
			}

			console := log.New(cmd.OutOrStdout(), true)
			removed := 0
			for _, target := range targets {
				pairs, err := expand.All(ctx, target.Files)
				if err != nil {
					return errors.Errorf("target %q: %w", target.Name, err)
				}
				runner, err := operation.New(operation.Options{Settings: target.Options, Sink: console})
				if err != nil {
					return errors.Errorf("target %q: %w", target.Name, err)
				}
				n, err := runner.Clean(ctx, pairs)
				removed += n
				if err != nil {
					return errors.Errorf("cleaning target %q: %w", target.Name, err)
				}
				user.Info(fmt.Sprintf("Cleaned target %s", target.Name))
			}

			user.Success(fmt.Sprintf("Removed %s", plural(removed, "destination")))
			return nil
		},
	}
	return cmd
}
