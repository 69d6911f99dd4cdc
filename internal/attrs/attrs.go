// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package attrs parses the --attrs flag, which selects the fields of each
// result row and how they are shown.
package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
)

var lengthRegex = regexp.MustCompile(`-?\d+`)

// Attr is one selected field of a result row.
type Attr struct {
	// Key is the gjson path of the value within the row.
	Key string `yaml:"key"`
	// Include is false for fields only used for filtering and sorting.
	Include bool `yaml:"include"`
	// OutputKey names the value in the output and is the column title for
	// text output.
	OutputKey string `yaml:"outputKey"`
	// TransformSpec holds the transformations applied before output.
	TransformSpec string `yaml:"transformSpec"`
}

// Transform applies the spec to a string value. Other values pass through.
//
//	t, T      convert an RFC3339 time to GALLERY_TZ, or TZ
//	l, L      lower case
//	u, U      upper case
//	n         truncate to n characters
//	-n        shorten to n characters, eliding the middle
//
// When a spec repeats a kind of transformation, the last one wins.
func (a *Attr) Transform(value any) any {
	result, ok := value.(string)
	if !ok {
		return value
	}

	if strings.ContainsAny(a.TransformSpec, "tT") {
		result = a.localTime(result)
	}

	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")
	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	match := lengthRegex.FindAllString(a.TransformSpec, -1)
	if len(match) == 0 {
		return result
	}

	l, _ := strconv.Atoi(match[len(match)-1])
	abs := int(math.Abs(float64(l)))
	if len(result) <= abs {
		return result
	}
	if l >= 0 {
		return result[:l]
	}
	keep := max(abs/2-1, 1)
	return result[:keep] + ".." + result[len(result)-keep:]
}

func (a *Attr) localTime(value string) string {
	tz := os.Getenv("GALLERY_TZ")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return value
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithError(err).Debugf("unknown timezone %s", tz)
		return value
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Not a time. Stop trying for the rest of the rows.
		a.TransformSpec = strings.NewReplacer("t", "", "T", "").Replace(a.TransformSpec)
		return value
	}
	return t.In(loc).Format("2006-01-02T15:04:05MST")
}

type AttrList []Attr

// String renders the list the way --attrs takes it.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses a comma separated list of key[:output[:transform]] specs. A key
// starting with ! is selected but not shown. A spec naming an attr already in
// the list updates it in place. A leading . on a key is dropped.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		keyIdx = iota
		outputIdx
		transformIdx
	)

specloop:
	for _, spec := range strings.Split(value, ",") {
		attr := Attr{Include: true}
		fields := strings.Split(spec, ":")

		attr.Key = strings.TrimSpace(fields[keyIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		attr.Key = strings.TrimPrefix(attr.Key, ".")
		if attr.Key == "" {
			return fmt.Errorf("invalid attr spec %q", spec)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		switch {
		case len(fields) == 1:
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		case strings.TrimSpace(fields[outputIdx]) != "":
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		default:
			attr.OutputKey = attr.Key
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the spec of a "*" attr to every attr.
func (a *AttrList) SetGlobalTransformSpec() error {
	spec := ""
	for i := range *a {
		if (*a)[i].Key == "*" {
			spec = (*a)[i].TransformSpec
			break
		}
	}
	if spec == "" {
		return nil
	}

	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}
	return nil
}

func (a *AttrList) Type() string {
	return "list"
}

// Included returns the attrs that are shown.
func (a AttrList) Included() AttrList {
	out := make(AttrList, 0, len(a))
	for _, attr := range a {
		if attr.Include {
			out = append(out, attr)
		}
	}
	return out
}
