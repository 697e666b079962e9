package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(v string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return v, nil }
}

func TestResolve_FirstNonEmptyLayerWins(t *testing.T) {
	var calls []string
	track := func(name, v string) Layer {
		return Layer{Name: name, Lookup: func(context.Context) (string, error) {
			calls = append(calls, name)
			return v, nil
		}}
	}

	res, err := Resolve(context.Background(),
		track("exact", ""),
		track("fuzzy", "  Accounting "),
		track("equipment", "IT"),
	)
	require.NoError(t, err)
	assert.Equal(t, Resolution{Value: "Accounting", Layer: "fuzzy"}, res)
	assert.Equal(t, []string{"exact", "fuzzy"}, calls, "later layers are not attempted")
}

func TestResolve_Unresolved(t *testing.T) {
	_, err := Resolve(context.Background(),
		Layer{Name: "exact", Lookup: constant("")},
		Layer{Name: "fuzzy", Lookup: constant(" ")},
	)
	assert.True(t, errors.Is(err, ErrUnresolved))
}

func TestResolve_LayerError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := Resolve(context.Background(),
		Layer{Name: "exact", Lookup: func(context.Context) (string, error) { return "", boom }},
		Layer{Name: "fuzzy", Lookup: constant("never")},
	)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "exact")
}
