// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/galleryctl/internal/gallery"
	"github.com/staranto/galleryctl/internal/meta"
)

// galleryRow is one collection of a user's galleries.
type galleryRow struct {
	Gallery string `json:"gallery"`
	gallery.Collection
}

// GalleryCommandAction is the action handler for the "gallery" subcommand. It
// lists the collections of every gallery owned by a user. With --refresh the
// collections are re-read individually, concurrently.
func GalleryCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName: "gallery",
		DefaultAttrs: []string{
			"gallery", "id", "name", "nfts.#:nfts", "layout.columns:columns", "!hidden",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, rt *Runtime) (any, error) {
			username, err := requireArg(cmd, "username")
			if err != nil {
				return nil, err
			}

			u, err := rt.API.User(ctx, username)
			if err != nil {
				return nil, err
			}

			galleries, err := rt.API.Galleries(ctx, u.ID)
			if err != nil {
				return nil, err
			}

			var rows []galleryRow
			for _, g := range galleries {
				collections := g.Collections
				if cmd.Bool("refresh") {
					ids := make([]string, len(collections))
					for i, c := range collections {
						ids[i] = c.ID
					}
					if collections, err = rt.API.CollectionsByID(ctx, ids); err != nil {
						return nil, err
					}
				}
				for _, c := range collections {
					if c.Hidden && !cmd.Bool("hidden") {
						continue
					}
					rows = append(rows, galleryRow{Gallery: g.ID, Collection: c})
				}
			}
			log.Debugf("%d collections for %s", len(rows), username)
			return rows, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// GalleryCommandBuilder constructs the cli.Command definition for the
// "gallery" command.
func GalleryCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "gallery",
		Usage:     "list the collections in a user's galleries",
		UsageText: `galleryctl gallery <username> [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "hidden",
				Usage: "include hidden collections",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "re-read every collection instead of using the gallery copy",
			},
		},
		Action: GalleryCommandAction,
		Meta:   meta,
	}).Build()
}
