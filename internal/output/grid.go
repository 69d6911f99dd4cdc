// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"github.com/staranto/galleryctl/internal/gallery"
	"github.com/staranto/galleryctl/internal/layout"
	"github.com/staranto/galleryctl/internal/nft"
)

// maxCellWidth bounds a grid cell's label.
const maxCellWidth = 24

// GridRows lays items out row by row. Whitespace blocks are empty cells and
// the last row is padded.
func GridRows(items []gallery.Item, columns int) [][]string {
	columns = max(columns, 1)
	var rows [][]string
	for start := 0; start < len(items); start += columns {
		row := make([]string, columns)
		for i := 0; i < columns && start+i < len(items); i++ {
			row[i] = cellLabel(items[start+i])
		}
		rows = append(rows, row)
	}
	return rows
}

func cellLabel(it gallery.Item) string {
	n, ok := it.(gallery.Nft)
	if !ok {
		return ""
	}
	label := n.Name
	if label == "" {
		label = n.ID
	}
	if len(label) > maxCellWidth {
		label = label[:maxCellWidth-2] + ".."
	}
	return fmt.Sprintf("%s\n%s", label, nft.MediaTypeOf(n))
}

// Grid renders c the way a gallery page lays it out.
func Grid(w io.Writer, c gallery.Collection, mode layout.DisplayMode, opts Options) {
	items := layout.ItemsForDisplay(c, mode)
	columns := layout.Columns(c, mode)

	header, even, odd := styles(opts.Color)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderRow(true).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row%2 == 0:
				return even.Width(maxCellWidth).Padding(0, 1)
			default:
				return odd.Width(maxCellWidth).Padding(0, 1)
			}
		}).
		Rows(GridRows(items, columns)...)

	if opts.Titles {
		fmt.Fprintf(w, "%s (%d columns, %s)\n", c.Name, columns, mode)
	}
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, t.String())
}
