// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/galleryctl/internal/gallery"
	"github.com/staranto/galleryctl/internal/layout"
	"github.com/staranto/galleryctl/internal/meta"
	"github.com/staranto/galleryctl/internal/nft"
	"github.com/staranto/galleryctl/internal/output"
)

const (
	kindNft        = "nft"
	kindWhitespace = "whitespace"
)

// itemRow is one cell of a collection.
type itemRow struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Name     string `json:"name,omitempty"`
	Media    string `json:"media,omitempty"`
	Image    string `json:"image,omitempty"`
	Video    string `json:"video,omitempty"`
	Contract string `json:"contract,omitempty"`
	Created  string `json:"created_at,omitempty"`
}

func itemRows(items []gallery.Item, imageSize int) []itemRow {
	rows := make([]itemRow, 0, len(items))
	for i, it := range items {
		row := itemRow{Position: i, ID: it.ItemID(), Kind: kindWhitespace}
		if n, ok := it.(gallery.Nft); ok {
			row.Kind = kindNft
			row.Name = n.Name
			row.Media = string(nft.MediaTypeOf(n))
			row.Image = nft.ResizedImageURL(n, imageSize)
			row.Contract = n.AssetContract.Address
			if !n.CreatedAt.IsZero() {
				row.Created = n.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
			}
			if row.Media == string(nft.Video) {
				row.Video = nft.VideoURL(n)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

var itemAttrs = []string{"position:#", "id", "kind", "name", "media"}

// CollectionCommandAction is the action handler for the "collection"
// subcommand. Text output draws the layout unless --list is given; every
// other format emits one row per cell.
func CollectionCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "collection") {
		return nil
	}

	id, err := requireArg(cmd, "collection id")
	if err != nil {
		return err
	}
	mode, err := layout.ParseDisplayMode(cmd.String("mode"))
	if err != nil {
		return err
	}

	rt, err := NewRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	c, err := rt.API.Collection(ctx, id)
	if err != nil {
		return err
	}

	opts := output.OptionsFromCommand(cmd)
	if opts.Format == "text" && !cmd.Bool("list") {
		output.Grid(Writer(cmd), *c, mode, opts)
		return nil
	}

	rows := itemRows(layout.ItemsForDisplay(*c, mode), cmd.Int("size"))
	return Emit(rows, BuildAttrs(cmd, itemAttrs...), cmd, "")
}

// CollectionCommandBuilder constructs the cli.Command definition for the
// "collection" command.
func CollectionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "collection",
		Usage:     "show a collection",
		UsageText: `galleryctl collection <id> [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "list the cells instead of drawing the grid",
			},
			NameSpacedValueChainFlagFromConfigFile("collection", meta.Config.Source, &cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "display mode: grid or list",
				Sources: cli.NewValueSourceChain(cli.EnvVar("GALLERY_MODE")),
				Value:   layout.Grid.String(),
			}),
			&cli.IntFlag{
				Name:  "size",
				Usage: "image width for resized image URLs",
				Value: nft.DefaultImageSize,
			},
		},
		Action: CollectionCommandAction,
		Meta:   meta,
	}).Build()
}
