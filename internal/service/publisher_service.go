package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"itinvent-bot/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventEnvelope is the JSON body of every message on the in-process bus.
type EventEnvelope struct {
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e EventEnvelope) Event() events.BaseEvent {
	return events.BaseEvent{Type: e.Type, Data: e.Payload, OccurredAt: e.OccurredAt}
}

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) Publish(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(EventEnvelope{
		Type:       event.EventType(),
		Payload:    event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, msg)
}
