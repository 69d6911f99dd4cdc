// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/galleryctl/internal/attrs"
	"github.com/staranto/galleryctl/internal/config"
	"github.com/staranto/galleryctl/internal/filters"
)

// Options controls rendering. Commands fill it from their flags.
type Options struct {
	Format string
	Color  bool
	Titles bool
	Filter string
	Sort   string
}

// OptionsFromCommand reads the output flags of cmd.
func OptionsFromCommand(cmd *cli.Command) Options {
	return Options{
		Format: cmd.String("output"),
		Color:  cmd.Bool("color"),
		Titles: cmd.Bool("titles"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
	}
}

// SliceDiceSpit filters, transforms, sorts and renders raw per the flags of
// cmd. parent is the gjson path of the rows within raw.
func SliceDiceSpit(raw []byte, attrs attrs.AttrList, cmd *cli.Command, parent string, w io.Writer) error {
	return Spit(raw, attrs, parent, OptionsFromCommand(cmd), w)
}

// Spit is SliceDiceSpit with explicit options.
func Spit(raw []byte, attrs attrs.AttrList, parent string, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	// If raw, just dump it and go home.
	if opts.Format == "raw" {
		_, err := w.Write(raw)
		return err
	}

	dataset := gjson.ParseBytes(raw)
	if parent != "" {
		dataset = dataset.Get(parent)
	}

	rows := filters.FilterDataset(dataset, attrs, opts.Filter)

	for _, row := range rows {
		for i := range attrs {
			if attrs[i].TransformSpec != "" {
				row[attrs[i].OutputKey] = attrs[i].Transform(row[attrs[i].OutputKey])
			}
		}
	}

	SortDataset(rows, opts.Sort)
	rows = project(rows, attrs)

	switch opts.Format {
	case "json":
		out, err := json.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "", "text":
		TableWriter(rows, attrs, opts, w)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

// project drops the values of attrs that are not shown.
func project(rows []map[string]any, attrs attrs.AttrList) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		p := make(map[string]any, len(attrs))
		for _, attr := range attrs {
			if attr.Include {
				p[attr.OutputKey] = row[attr.OutputKey]
			}
		}
		out = append(out, p)
	}
	return out
}

// TableWriter renders the result set in a tabular form honoring color and
// titles.
func TableWriter(resultSet []map[string]any, attrs attrs.AttrList, opts Options, w io.Writer) {
	if len(resultSet) == 0 {
		return
	}

	headerStyle, evenRowStyle, oddRowStyle := styles(opts.Color)
	pad, _ := config.GetInt("padding", 1)

	var rows [][]string
	for _, result := range resultSet {
		row := make([]string, 0, len(result))
		for _, attr := range attrs {
			if !attr.Include {
				continue
			}
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}
			if col > 0 {
				style = style.PaddingLeft(pad)
			}
			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		var headers []string
		for _, attr := range attrs {
			if attr.Include {
				headers = append(headers, attr.OutputKey)
			}
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t.String())
}

func styles(color bool) (header, even, odd lipgloss.Style) {
	cell := lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
	header = lipgloss.NewStyle().Align(lipgloss.Left)
	even, odd = cell, cell
	if color {
		headerColor, evenColor, oddColor := getColors("colors")
		header = header.Foreground(lipgloss.Color(headerColor))
		even = even.Foreground(lipgloss.Color(evenColor))
		odd = odd.Foreground(lipgloss.Color(oddColor))
	}
	return header, even, odd
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value any, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		// Nothing shown here has a meaningful fraction.
		return fmt.Sprintf("%.0f", value)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			log.WithError(err).Debug("failed to encode value")
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
