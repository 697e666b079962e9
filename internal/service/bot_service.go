package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"itinvent-bot/internal/dto"
	"itinvent-bot/pkg/access"
	"itinvent-bot/pkg/conversation"
	"itinvent-bot/pkg/inventory"
	"itinvent-bot/pkg/render"
)

// EventHandler is the conversation engine.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev conversation.Event) *render.Render
}

// DatabaseCatalog lists the selectable databases and the one a user works against.
type DatabaseCatalog interface {
	Databases() []inventory.Database
	Active(ctx context.Context, userID string) string
}

type IBotService interface {
	HandleEvent(ctx context.Context, req *dto.BotEventRequest) (*dto.BotEventResponse, error)
	ListDatabases(ctx context.Context, userID string) []dto.DatabaseResponse
}

type botService struct {
	engine  EventHandler
	catalog DatabaseCatalog
}

func NewBotService(engine EventHandler, catalog DatabaseCatalog) IBotService {
	return &botService{engine: engine, catalog: catalog}
}

func (s *botService) HandleEvent(ctx context.Context, req *dto.BotEventRequest) (*dto.BotEventResponse, error) {
	user := access.User{ID: req.UserId, Groups: req.Groups}

	var ev conversation.Event
	switch conversation.EventKind(req.Kind) {
	case conversation.EventText:
		ev = conversation.TextEvent(user, req.Text)
	case conversation.EventPhoto:
		photo, err := base64.StdEncoding.DecodeString(req.Photo)
		if err != nil {
			return nil, fmt.Errorf("%w: photo is not valid base64", ErrBadEvent)
		}
		ev = conversation.PhotoEvent(user, photo)
	case conversation.EventAction:
		ev = conversation.ActionEvent(user, req.Action)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrBadEvent, req.Kind)
	}

	return &dto.BotEventResponse{Render: s.engine.HandleEvent(ctx, ev)}, nil
}

func (s *botService) ListDatabases(ctx context.Context, userID string) []dto.DatabaseResponse {
	active := ""
	if userID != "" {
		active = s.catalog.Active(ctx, userID)
	}

	dbs := s.catalog.Databases()
	res := make([]dto.DatabaseResponse, 0, len(dbs))
	for _, db := range dbs {
		res = append(res, dto.DatabaseResponse{
			Id:          db.ID,
			Name:        db.Name,
			Description: db.Description,
			Active:      db.ID == active,
		})
	}
	return res
}
