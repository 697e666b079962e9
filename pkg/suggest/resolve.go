package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnresolved = errors.New("no layer produced a value")

// Layer is one strategy in an attribute fallback chain.
type Layer struct {
	Name   string
	Lookup func(ctx context.Context) (string, error)
}

// Resolution carries the value and the name of the layer that produced it.
type Resolution struct {
	Value string
	Layer string
}

// Resolve tries layers in order and stops at the first non-blank value.
// A failing layer aborts the chain.
func Resolve(ctx context.Context, layers ...Layer) (Resolution, error) {
	for _, l := range layers {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}

		v, err := l.Lookup(ctx)
		if err != nil {
			return Resolution{}, fmt.Errorf("layer %s: %w", l.Name, err)
		}
		if v = strings.TrimSpace(v); v != "" {
			return Resolution{Value: v, Layer: l.Name}, nil
		}
	}
	return Resolution{}, ErrUnresolved
}
