// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/galleryctl/internal/gallery"
	"github.com/staranto/galleryctl/internal/meta"
)

// UserCommandAction is the action handler for the "user" subcommand. With no
// username it shows the signed in user.
func UserCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "user",
		DefaultAttrs: []string{"id", "username", "bio", "addresses"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, rt *Runtime) (any, error) {
			var (
				u   *gallery.User
				err error
			)
			if name := cmd.Args().First(); name != "" {
				u, err = rt.API.User(ctx, name)
			} else {
				u, err = rt.API.CurrentUser(ctx)
			}
			if err != nil || u == nil {
				return []gallery.User{}, err
			}
			return []gallery.User{*u}, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// UserCommandBuilder constructs the cli.Command definition for the "user"
// command.
func UserCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "user",
		Usage:     "show a user profile",
		UsageText: `galleryctl user [username] [options]`,
		Action:    UserCommandAction,
		Meta:      meta,
	}).Build()
}
