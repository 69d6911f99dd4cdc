// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/galleryctl/internal/layout"
	"github.com/staranto/galleryctl/internal/storage"
)

func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	if !slices.Contains(validOutputFlagValues, value.(string)) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

func StorageValidator(value any) error {
	valid := []string{storage.DriverFile, storage.DriverSQLite, storage.DriverS3, storage.DriverRedis, storage.DriverMemory}
	if !slices.Contains(valid, value.(string)) {
		return fmt.Errorf("must be one of %v", valid)
	}
	return nil
}

func URLValidator(value any) error {
	u, err := url.ParseRequestURI(value.(string))
	if err != nil || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

// ColumnsValidator accepts 0 (unset) or a count inside the layout bounds.
func ColumnsValidator(value any) error {
	n := value.(int)
	if n != 0 && !layout.DefaultBounds.Contains(n) {
		return fmt.Errorf("must be between %d and %d", layout.MinColumns, layout.MaxColumns)
	}
	return nil
}

// MoveValidator checks every value has the form id:index.
func MoveValidator(value any) error {
	for _, v := range value.([]string) {
		if _, _, err := ParseMove(v); err != nil {
			return err
		}
	}
	return nil
}

// ParseMove splits an id:index move spec. The id may itself contain colons.
func ParseMove(spec string) (string, int, error) {
	i := strings.LastIndex(spec, ":")
	if i <= 0 || i == len(spec)-1 {
		return "", 0, fmt.Errorf("invalid move %q: want id:index", spec)
	}
	idx, err := strconv.Atoi(spec[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid move %q: index is not a number", spec)
	}
	return spec[:i], idx, nil
}
