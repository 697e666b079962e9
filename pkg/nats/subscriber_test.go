package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		subject  string
		data     string
		wantType string
		wantErr  bool
	}{
		{
			name:     "typed envelope",
			subject:  "events.workflow.committed",
			data:     `{"type":"workflow.committed","payload":{"record_id":"r1"},"occurred_at":"2024-05-01T10:00:00Z"}`,
			wantType: "workflow.committed",
		},
		{
			name:     "type from subject",
			subject:  "events.workflow.committed",
			data:     `{"payload":{"record_id":"r1"},"occurred_at":"2024-05-01T10:00:00Z"}`,
			wantType: "workflow.committed",
		},
		{name: "garbage", subject: "events.x", data: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decode(tt.subject, []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, ev.EventType())
			assert.Equal(t, "r1", ev.Payload()["record_id"])
			assert.True(t, at.Equal(ev.Timestamp()))
		})
	}
}
