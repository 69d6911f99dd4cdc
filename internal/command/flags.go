// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/galleryctl/internal/config"
	"github.com/staranto/galleryctl/internal/fetcher"
	"github.com/staranto/galleryctl/internal/storage"
)

func init() {
	cfg, _ = config.Load("")
}

var (
	cfg config.Type

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
	}

	return
}

// NewAPIFlag constructs the "api" base URL flag, optionally namespaced to a
// command and config file.
func NewAPIFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "api",
		Usage: "base URL of the gallery API",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("GALLERY_API_BASE_URL"),
		),
		Value: fetcher.DefaultBaseURL,
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator, URLValidator)
		},
	}

	if len(params) == 2 {
		flag.Sources.Chain = append(flag.Sources.Chain,
			yaml.YAML(params[0]+".api", altsrc.StringSourcer(params[1])),
			yaml.YAML("api.base_url", altsrc.StringSourcer(params[1])))
	}

	return
}

// NewSessionFlag constructs the "session" flag, the Cookie header of an
// existing signed-in session.
func NewSessionFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "session",
		Usage: "session cookies to send, as name=value; name2=value2",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("GALLERY_SESSION"),
		),
	}

	if len(params) == 2 {
		flag.Sources.Chain = append(flag.Sources.Chain,
			yaml.YAML(params[0]+".session", altsrc.StringSourcer(params[1])),
			yaml.YAML("api.session", altsrc.StringSourcer(params[1])))
	}

	return
}

// NewStorageFlag constructs the "storage" driver flag.
func NewStorageFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "storage",
		Usage: "durable cache store: file, sqlite, s3, redis or memory",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("GALLERY_STORAGE"),
		),
		Value: storage.DriverFile,
		Validator: func(value string) error {
			return FlagValidators(value, StorageValidator)
		},
	}

	if len(params) == 2 {
		flag.Sources.Chain = append(flag.Sources.Chain,
			yaml.YAML(params[0]+".storage", altsrc.StringSourcer(params[1])),
			yaml.YAML("cache.storage", altsrc.StringSourcer(params[1])))
	}

	return
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas reports whether target is an executable on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
