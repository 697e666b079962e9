package inventory

import (
	"context"
	"testing"

	"itinvent-bot/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanSerial(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "S/N: ABC123", want: "ABC123"},
		{raw: "SN ABC123", want: "ABC123"},
		{raw: "Serial Number: 5CD1234XYZ", want: "5CD1234XYZ"},
		{raw: "service tag - 7HJK2L3", want: "7HJK2L3"},
		{raw: "Серийный номер: QWE-1", want: "QWE-1"},
		{raw: "  ABC123  ", want: "ABC123"},
		{raw: "SN100", want: "SN100"},
		{raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanSerial(tt.raw))
		})
	}
}

func TestSerialVariants(t *testing.T) {
	assert.Equal(t, []string{"abo0", "ABO0", "AB00", "ABOO"}, SerialVariants("abo0"))
	assert.Equal(t, []string{"XYZ"}, SerialVariants("XYZ"))
	assert.Nil(t, SerialVariants("  "))
}

func TestMemoryBackend_FindBySerialTriesVariants(t *testing.T) {
	b := NewMemoryBackend()
	b.Equipment = []store.Equipment{{Serial: "CN0AB12", Model: "HP"}}

	e, err := b.FindBySerial(context.Background(), "CNOAB12")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "HP", e.Model)

	e, err = b.FindBySerial(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, e)
}
