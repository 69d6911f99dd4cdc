// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"regexp"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
)

const (
	programName = "galleryctl"
	projectURL  = "https://github.com/staranto/galleryctl"
)

var h1Re = regexp.MustCompile(`(?m)^#\s+(.+)$`)

type example struct {
	Desc string
	Cmd  string
}

// page is one command's markdown doc.
type page struct {
	Command  string
	Title    string
	Short    string
	Examples []example
	raw      []byte
}

func parsePage(command string, raw []byte) page {
	md := string(raw)
	p := page{Command: command, raw: raw}
	if m := h1Re.FindStringSubmatch(md); m != nil {
		p.Title = strings.TrimSpace(m[1])
	}
	p.Short = firstParagraph(section(md, "short description"))
	if p.Short == "" && p.Title != "" {
		p.Short = p.Title + "."
	}
	p.Examples = parseExamples(firstFence(section(md, "quick examples")))
	return p
}

// section returns the text after the heading containing name, up to the
// next heading of any level.
func section(md, name string) string {
	idx := strings.Index(strings.ToLower(md), name)
	if idx < 0 {
		return ""
	}
	rest := md[idx:]
	nl := strings.Index(rest, "\n")
	if nl < 0 {
		return ""
	}
	rest = rest[nl+1:]

	inFence := false
	off := 0
	for _, ln := range strings.SplitAfter(rest, "\n") {
		if strings.HasPrefix(ln, "```") {
			inFence = !inFence
		}
		if !inFence && strings.HasPrefix(ln, "#") {
			return rest[:off]
		}
		off += len(ln)
	}
	return rest
}

func firstParagraph(s string) string {
	var parts []string
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(ln, "```") {
			break
		}
		parts = append(parts, ln)
	}
	return strings.Join(parts, " ")
}

func firstFence(s string) string {
	const fence = "```"
	start := strings.Index(s, fence)
	if start < 0 {
		return ""
	}
	s = s[start+len(fence):]
	// Drop an info string such as "sh".
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	end := strings.Index(s, fence)
	if end < 0 {
		return ""
	}
	return s[:end]
}

// parseExamples pairs each "# description" line with the command after it.
func parseExamples(code string) []example {
	var exs []example
	desc := ""
	for _, ln := range strings.Split(code, "\n") {
		ln = strings.TrimSpace(ln)
		switch {
		case ln == "":
		case strings.HasPrefix(ln, "#"):
			desc = strings.TrimSpace(strings.TrimLeft(ln, "#"))
		default:
			if desc == "" {
				desc = "Example"
			}
			exs = append(exs, example{Desc: desc, Cmd: strings.Join(strings.Fields(ln), " ")})
			desc = ""
		}
	}
	return exs
}

// Man renders the whole markdown as a man page.
func (p page) Man() []byte {
	return md2man.Render(p.raw)
}

// TLDR renders the short description and examples in tldr-pages format.
func (p page) TLDR() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s-%s\n\n", programName, p.Command)

	short := p.Short
	if short == "" {
		short = programName + " " + p.Command
	}
	fmt.Fprintf(&b, "> %s\n> More information: %s.\n\n", short, projectURL)

	exs := p.Examples
	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: programName + " " + p.Command + " --help"}}
	}
	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s:\n\n`%s`\n", ex.Desc, ex.Cmd)
	}
	return b.String()
}
