// Package action encodes and decodes the callback tokens attached to chat buttons.
//
// Token grammar:
//
//	{mode}_{feature}              trigger
//	{mode}_{feature}:{argument}   select
//	{mode}_{feature}_prev|_next   navigate
package action

import (
	"errors"
	"fmt"
	"strings"
)

// MaxTokenLength matches the callback payload limit of common chat transports.
const MaxTokenLength = 64

// Modes accepted in tokens. Workflow modes plus the idle menus: database, employee search and export.
const (
	ModeTransfer = "transfer"
	ModeWork     = "work"
	ModeUnfound  = "unfound"
	ModeDatabase = "db"
	ModeSearch   = "search"
	ModeExport   = "export"
)

var knownModes = map[string]bool{
	ModeTransfer: true,
	ModeWork:     true,
	ModeUnfound:  true,
	ModeDatabase: true,
	ModeSearch:   true,
	ModeExport:   true,
}

var ErrMalformed = errors.New("malformed action token")

type Op int

const (
	OpTrigger Op = iota
	OpSelect
	OpNavigate
)

func (o Op) String() string {
	switch o {
	case OpSelect:
		return "select"
	case OpNavigate:
		return "navigate"
	default:
		return "trigger"
	}
}

type Direction string

const (
	Prev Direction = "prev"
	Next Direction = "next"
)

// Action is a decoded token.
type Action struct {
	Mode    string
	Feature string
	Op      Op
	Arg     string
	Dir     Direction
}

// Parse decodes token into an Action. Unknown modes and empty parts are rejected.
func Parse(token string) (Action, error) {
	if token == "" || len(token) > MaxTokenLength {
		return Action{}, fmt.Errorf("%w: %q", ErrMalformed, token)
	}

	head, arg, hasArg := strings.Cut(token, ":")
	if hasArg && arg == "" {
		return Action{}, fmt.Errorf("%w: empty argument in %q", ErrMalformed, token)
	}

	mode, feature, ok := strings.Cut(head, "_")
	if !ok || feature == "" {
		return Action{}, fmt.Errorf("%w: %q", ErrMalformed, token)
	}
	if !knownModes[mode] {
		return Action{}, fmt.Errorf("%w: unknown mode %q", ErrMalformed, mode)
	}

	if hasArg {
		return Action{Mode: mode, Feature: feature, Op: OpSelect, Arg: arg}, nil
	}

	for _, dir := range []Direction{Prev, Next} {
		suffix := "_" + string(dir)
		if base, found := strings.CutSuffix(feature, suffix); found {
			if base == "" {
				return Action{}, fmt.Errorf("%w: %q", ErrMalformed, token)
			}
			return Action{Mode: mode, Feature: base, Op: OpNavigate, Dir: dir}, nil
		}
	}

	return Action{Mode: mode, Feature: feature, Op: OpTrigger}, nil
}

// String encodes the action back into its token.
func (a Action) String() string {
	switch a.Op {
	case OpSelect:
		return Select(a.Mode, a.Feature, a.Arg)
	case OpNavigate:
		return Navigate(a.Mode, a.Feature, a.Dir)
	default:
		return Trigger(a.Mode, a.Feature)
	}
}

func Trigger(mode, feature string) string {
	return mode + "_" + feature
}

func Select(mode, feature, arg string) string {
	return mode + "_" + feature + ":" + arg
}

func Navigate(mode, feature string, dir Direction) string {
	return mode + "_" + feature + "_" + string(dir)
}
