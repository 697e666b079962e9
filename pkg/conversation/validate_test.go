package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValidator_Person(t *testing.T) {
	v := newFieldValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "initials", input: "Ivanov I.I.", want: "Ivanov I.I."},
		{name: "cyrillic", input: " Петров Пётр ", want: "Петров Пётр"},
		{name: "keyword inside a surname", input: "Dropkin", want: "Dropkin"},
		{name: "keyword prefix", input: "Updike J.", want: "Updike J."},
		{name: "keyword in the middle", input: "Execov A.", want: "Execov A."},
		{name: "keyword as a word", input: "x DROP table", wantErr: true},
		{name: "keyword between punctuation", input: "a,union,b", wantErr: true},
		{name: "quote", input: "O'Neil", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Person(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldValidator_Serial(t *testing.T) {
	v := newFieldValidator()

	got, err := v.Serial(" CN0AB12 ")
	require.NoError(t, err)
	assert.Equal(t, "CN0AB12", got)

	_, err = v.Serial("<script>")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "A serial number is 1-50 latin letters, digits, dashes or dots.", userMessage(err))
}
