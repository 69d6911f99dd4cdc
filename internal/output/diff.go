// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Diff renders the changes from before to after, both JSON objects once
// encoded. It returns "" when they are equal.
func Diff(before, after any, color bool) (string, error) {
	a, err := json.Marshal(before)
	if err != nil {
		return "", fmt.Errorf("failed to encode before: %w", err)
	}
	b, err := json.Marshal(after)
	if err != nil {
		return "", fmt.Errorf("failed to encode after: %w", err)
	}

	d, err := gojsondiff.New().Compare(a, b)
	if err != nil {
		return "", fmt.Errorf("failed to compare: %w", err)
	}
	if !d.Modified() {
		return "", nil
	}

	var left map[string]any
	if err := json.Unmarshal(a, &left); err != nil {
		return "", fmt.Errorf("failed to decode before: %w", err)
	}

	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	return f.Format(d)
}
