package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  Action
	}{
		{
			name:  "select with index",
			token: "transfer_location:3",
			want:  Action{Mode: ModeTransfer, Feature: "location", Op: OpSelect, Arg: "3"},
		},
		{
			name:  "select manual",
			token: "unfound_branch:manual",
			want:  Action{Mode: ModeUnfound, Feature: "branch", Op: OpSelect, Arg: "manual"},
		},
		{
			name:  "navigate next",
			token: "work_location_next",
			want:  Action{Mode: ModeWork, Feature: "location", Op: OpNavigate, Dir: Next},
		},
		{
			name:  "navigate prev with underscore feature",
			token: "work_pc_component_prev",
			want:  Action{Mode: ModeWork, Feature: "pc_component", Op: OpNavigate, Dir: Prev},
		},
		{
			name:  "trigger",
			token: "transfer_confirm",
			want:  Action{Mode: ModeTransfer, Feature: "confirm", Op: OpTrigger},
		},
		{
			name:  "database select keeps argument verbatim",
			token: "db_select:MSK-ITINVENT",
			want:  Action{Mode: ModeDatabase, Feature: "select", Op: OpSelect, Arg: "MSK-ITINVENT"},
		},
		{
			name:  "employee search navigation",
			token: "search_equipment_next",
			want:  Action{Mode: ModeSearch, Feature: "equipment", Op: OpNavigate, Dir: Next},
		},
		{
			name:  "export of every workflow",
			token: "export_records:all",
			want:  Action{Mode: ModeExport, Feature: "records", Op: OpSelect, Arg: "all"},
		},
		{
			name:  "argument may contain a colon",
			token: "work_model:HP:LJ",
			want:  Action{Mode: ModeWork, Feature: "model", Op: OpSelect, Arg: "HP:LJ"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.token, got.String())
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tokens := []string{
		"",
		"transfer",
		"transfer_",
		"transfer_location:",
		"chat_location:1",
		"transfer__next",
		"work_x" + string(make([]byte, MaxTokenLength)),
	}

	for _, token := range tokens {
		_, err := Parse(token)
		assert.True(t, errors.Is(err, ErrMalformed), "token %q", token)
	}
}

func TestTokensDoNotCollide(t *testing.T) {
	selectTok, err := Parse(Select(ModeTransfer, "location", "next"))
	require.NoError(t, err)
	navTok, err := Parse(Navigate(ModeTransfer, "location", Next))
	require.NoError(t, err)

	assert.Equal(t, OpSelect, selectTok.Op)
	assert.Equal(t, OpNavigate, navTok.Op)
	assert.NotEqual(t, selectTok.String(), navTok.String())

	transfer, err := Parse(Navigate(ModeTransfer, "location", Prev))
	require.NoError(t, err)
	unfound, err := Parse(Navigate(ModeUnfound, "location", Prev))
	require.NoError(t, err)
	assert.NotEqual(t, transfer.Mode, unfound.Mode)
}
