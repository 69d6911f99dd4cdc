// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/galleryctl/internal/meta"
)

const bashCompletionScript = `# bash completion for galleryctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_galleryctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "user gallery collection organize cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr --api --session --storage"

    case "$cmd" in
        user)
            local opts="$common"
            ;;
        gallery)
            local opts="$common --hidden --refresh"
            ;;
        collection)
            local opts="$common --list -l --mode -m --size"
            ;;
        organize)
            local opts="$common --columns --move --unstage --whitespace --dry-run --interactive -i --new --gallery --name --note --stage"
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "show purge nuke" -- "$cur") )
                return 0
            fi
            local opts="$common --files --match --hours"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --storage)
            COMPREPLY=( $(compgen -W "file sqlite s3 redis memory" -- "$cur") )
            return 0
            ;;
        --mode|-m)
            COMPREPLY=( $(compgen -W "grid list" -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _galleryctl galleryctl
`

const zshCompletionScript = `#compdef galleryctl

_galleryctl() {
  local -a cmds
  cmds=(
    'user:show a user profile'
    'gallery:list the collections in a user'"'"'s galleries'
    'collection:show a collection'
    'organize:reorder, space out and resize a collection'
    'cache:inspect and clear the local cache'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  '--api[API base URL]:url'
  '--session[session cookies]:cookies'
  '--storage[cache store]:driver:(file sqlite s3 redis memory)'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'galleryctl commands' cmds
    return
  fi

  case $words[2] in
    user)
      _arguments -C $common '::username'
      ;;
    gallery)
      _arguments -C $common \
        '--hidden[include hidden collections]' \
        '--refresh[re-read every collection]' \
        ':username'
      ;;
    collection)
      _arguments -C $common \
        '(-l --list)'{-l,--list}'[list cells]' \
        '(-m --mode)'{-m,--mode}'[display mode]:mode:(grid list)' \
        '--size[image width]:size' \
        ':collection id'
      ;;
    organize)
      _arguments -C $common \
        '--columns[column count]:columns:(1 2 3 4 5)' \
        '*--move[move id:index]:move' \
        '*--unstage[remove item]:id' \
        '*--whitespace[insert blank at index]:index' \
        '--dry-run[show the change only]' \
        '(-i --interactive)'{-i,--interactive}'[terminal UI]' \
        '--new[create a collection]' \
        '--gallery[gallery id]:gallery' \
        '--name[collection name]:name' \
        '--note[collector note]:note' \
        '*--stage[nft id]:nft' \
        '::collection id'
      ;;
    cache)
      _arguments -C '1: :((show purge nuke))' $common \
        '--files[list cache files]' \
        '--match[key text]:text' \
        '--hours[age in hours]:hours'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _galleryctl galleryctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(Writer(cmd), bashCompletionScript)
	case "zsh":
		fmt.Fprint(Writer(cmd), zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(Writer(cmd), zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(Writer(cmd), bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: galleryctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "galleryctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
