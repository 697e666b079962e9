package service

import (
	"context"
	"encoding/base64"
	"testing"

	"itinvent-bot/internal/dto"
	"itinvent-bot/pkg/conversation"
	"itinvent-bot/pkg/inventory"
	"itinvent-bot/pkg/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureEngine struct {
	last conversation.Event
}

func (e *captureEngine) HandleEvent(ctx context.Context, ev conversation.Event) *render.Render {
	e.last = ev
	return render.Prompt("ok")
}

type staticCatalog struct{}

func (staticCatalog) Databases() []inventory.Database {
	return []inventory.Database{{ID: "ITINVENT", Name: "Head office"}, {ID: "DB2", Name: "Branch"}}
}

func (staticCatalog) Active(ctx context.Context, userID string) string {
	return "DB2"
}

func TestBotService_HandleEvent(t *testing.T) {
	photo := []byte{0xff, 0xd8, 0xff}

	tests := []struct {
		name    string
		req     dto.BotEventRequest
		check   func(t *testing.T, ev conversation.Event)
		wantErr bool
	}{
		{
			name: "text",
			req:  dto.BotEventRequest{UserId: "u1", Groups: []string{"g"}, Kind: "text", Text: "ABC"},
			check: func(t *testing.T, ev conversation.Event) {
				assert.Equal(t, conversation.EventText, ev.Kind)
				assert.Equal(t, "ABC", ev.Text)
				assert.Equal(t, []string{"g"}, ev.User.Groups)
			},
		},
		{
			name: "photo",
			req:  dto.BotEventRequest{UserId: "u1", Kind: "photo", Photo: base64.StdEncoding.EncodeToString(photo)},
			check: func(t *testing.T, ev conversation.Event) {
				assert.Equal(t, conversation.EventPhoto, ev.Kind)
				assert.Equal(t, photo, ev.Photo)
			},
		},
		{
			name: "action",
			req:  dto.BotEventRequest{UserId: "u1", Kind: "action", Action: "work_start"},
			check: func(t *testing.T, ev conversation.Event) {
				assert.Equal(t, conversation.EventAction, ev.Kind)
				assert.Equal(t, "work_start", ev.Action)
			},
		},
		{name: "broken photo", req: dto.BotEventRequest{UserId: "u1", Kind: "photo", Photo: "%%%"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &captureEngine{}
			svc := NewBotService(engine, staticCatalog{})

			res, err := svc.HandleEvent(context.Background(), &tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, render.KindPrompt, res.Render.Kind)
			assert.Equal(t, "u1", engine.last.User.ID)
			tt.check(t, engine.last)
		})
	}
}

func TestBotService_ListDatabasesMarksActive(t *testing.T) {
	svc := NewBotService(&captureEngine{}, staticCatalog{})

	dbs := svc.ListDatabases(context.Background(), "u1")
	require.Len(t, dbs, 2)
	assert.False(t, dbs[0].Active)
	assert.True(t, dbs[1].Active)

	anonymous := svc.ListDatabases(context.Background(), "")
	assert.False(t, anonymous[1].Active)
}
