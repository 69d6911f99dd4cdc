// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/galleryctl/internal/gallery"
	"github.com/staranto/galleryctl/internal/layout"
	"github.com/staranto/galleryctl/internal/meta"
	"github.com/staranto/galleryctl/internal/organizer"
	"github.com/staranto/galleryctl/internal/output"
	"github.com/staranto/galleryctl/internal/tui"
)

// probeInterval is how often an interactive session checks the API host.
const probeInterval = 30 * time.Second

var (
	ErrNothingToOrganize = errors.New("give a collection id or --new")
	ErrNewNeedsGallery   = errors.New("--new needs --gallery and --name")
)

// arrangement is the part of a collection the organizer changes. It is what
// --dry-run diffs.
type arrangement struct {
	Nfts   []string       `json:"nfts"`
	Layout gallery.Layout `json:"layout"`
}

func arrangementOf(d organizer.Draft) arrangement {
	ws := d.Layout.Whitespace
	if ws == nil {
		ws = []int{}
	}
	return arrangement{Nfts: d.NftIDs(), Layout: gallery.Layout{Columns: d.Layout.Columns, Whitespace: ws}}
}

// Edits are the non-interactive changes requested on the command line,
// applied in field order.
type Edits struct {
	Unstage    []string
	Whitespace []int
	Moves      []string
	Columns    int
}

// Apply runs the edits against o.
func (e Edits) Apply(o *organizer.Organizer) error {
	for _, id := range e.Unstage {
		if err := o.Unstage(id); err != nil {
			return err
		}
	}
	for _, idx := range e.Whitespace {
		if _, err := o.StageWhitespace(idx); err != nil {
			return err
		}
	}
	for _, spec := range e.Moves {
		id, idx, err := ParseMove(spec)
		if err != nil {
			return err
		}
		if err := o.Reorder(id, idx); err != nil {
			return err
		}
	}
	if e.Columns != 0 {
		if err := o.SetColumns(e.Columns); err != nil {
			return err
		}
	}
	return nil
}

func editsFromCommand(cmd *cli.Command) Edits {
	return Edits{
		Unstage:    cmd.StringSlice("unstage"),
		Whitespace: cmd.IntSlice("whitespace"),
		Moves:      cmd.StringSlice("move"),
		Columns:    cmd.Int("columns"),
	}
}

// OrganizeCommandAction is the action handler for the "organize" subcommand.
func OrganizeCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "organize") {
		return nil
	}

	id := cmd.Args().First()
	if id == "" && !cmd.Bool("new") {
		return ErrNothingToOrganize
	}
	if id == "" && (cmd.String("gallery") == "" || cmd.String("name") == "") {
		return ErrNewNeedsGallery
	}

	rt, err := NewRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	w := Writer(cmd)
	opts := []organizer.Option{organizer.WithBounds(Bounds())}
	title := "New collection"

	var org *organizer.Organizer
	var createdID string
	if id != "" {
		c, err := rt.API.Collection(ctx, id)
		if err != nil {
			return err
		}
		title = c.Name
		org = organizer.NewForCollection(*c, append(opts, organizer.WithUpdater(rt.API))...)
	} else {
		flow := rt.API.CreateFlow(cmd.String("gallery"), cmd.String("name"), cmd.String("note"),
			func(id string) { createdID = id })
		org = organizer.New(append(opts, organizer.WithCreateFlow(flow))...)
		for _, nftID := range cmd.StringSlice("stage") {
			if err := org.Stage(gallery.Nft{ID: nftID}); err != nil {
				return err
			}
		}
	}

	before := arrangementOf(org.Draft())
	if err := editsFromCommand(cmd).Apply(org); err != nil {
		return err
	}

	if cmd.Bool("interactive") {
		rt.Client.WatchConnectivity(rt.Fetcher.Ping, probeInterval)
		state, err := tui.Run(ctx, org, title)
		if err != nil {
			return err
		}
		log.Debugf("organizer finished %s", state)
		if state != organizer.Committed {
			fmt.Fprintln(w, "no changes saved")
			return nil
		}
		return reportCommit(cmd, org, createdID)
	}

	if cmd.Bool("dry-run") {
		diff, err := output.Diff(before, arrangementOf(org.Draft()), cmd.Bool("color"))
		if err != nil {
			return err
		}
		fmt.Fprint(w, diff)
		return org.Discard()
	}

	if err := org.Commit(ctx); err != nil {
		return err
	}
	return reportCommit(cmd, org, createdID)
}

func reportCommit(cmd *cli.Command, org *organizer.Organizer, createdID string) error {
	w := Writer(cmd)
	id := org.CollectionID()
	if id == "" {
		id = createdID
	}

	d := org.Draft()
	c := gallery.Collection{ID: id, Name: id, Nfts: d.Nfts, Layout: d.Layout}
	opts := output.OptionsFromCommand(cmd)
	if opts.Format == "text" {
		fmt.Fprintf(w, "saved %s\n", id)
		output.Grid(w, c, layout.Grid, opts)
		return nil
	}
	rows := itemRows(layout.ItemsForDisplay(c, layout.Grid), 0)
	return Emit(rows, BuildAttrs(cmd, itemAttrs...), cmd, "")
}

// OrganizeCommandBuilder constructs the cli.Command definition for the
// "organize" command.
func OrganizeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "organize",
		Usage:     "reorder, space out and resize a collection",
		UsageText: `galleryctl organize <id> [--move id:index]... [--unstage id]... [--whitespace index]... [--columns n] [--dry-run | -i]
galleryctl organize --new --gallery <id> --name <name> [--stage nft]... [options]`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "columns",
				Usage: "column count",
				Validator: func(value int) error {
					return FlagValidators(value, ColumnsValidator)
				},
			},
			&cli.StringSliceFlag{
				Name:  "move",
				Usage: "move an item, as id:index",
				Validator: func(value []string) error {
					return FlagValidators(value, MoveValidator)
				},
			},
			&cli.StringSliceFlag{
				Name:  "unstage",
				Usage: "remove an item",
			},
			&cli.IntSliceFlag{
				Name:  "whitespace",
				Usage: "insert a blank cell at index",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "show the change instead of saving it",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "organize in the terminal UI",
			},
			&cli.BoolFlag{
				Name:  "new",
				Usage: "create a new collection",
			},
			&cli.StringFlag{
				Name:  "gallery",
				Usage: "gallery of a new collection",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "name of a new collection",
			},
			&cli.StringFlag{
				Name:  "note",
				Usage: "collector's note of a new collection",
			},
			&cli.StringSliceFlag{
				Name:  "stage",
				Usage: "nft to add to a new collection",
			},
		},
		Action: OrganizeCommandAction,
		Meta:   meta,
	}).Build()
}
