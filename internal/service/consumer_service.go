package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"

	"itinvent-bot/internal/pkg/mailer"
	"itinvent-bot/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventForwarder is the outbound broker, normally the NATS publisher.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	forwarder EventForwarder
	mailer    mailer.IEmailService
	mailTo    []string
	actsDir   string
}

// NewConsumerService handles committed workflows off the bus. forwarder and mail may be nil.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	forwarder EventForwarder,
	mail mailer.IEmailService,
	mailTo []string,
	actsDir string,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		forwarder: forwarder,
		mailer:    mail,
		mailTo:    mailTo,
		actsDir:   actsDir,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope EventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // malformed messages never become valid
		return
	}

	if envelope.Type != events.TypeWorkflowCommitted {
		msg.Ack()
		return
	}
	recordID, _ := envelope.Payload["record_id"].(string)

	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, envelope.Event()); err != nil {
			log.Printf("[ERROR] Failed to forward event for record %s: %v", recordID, err)
			msg.Nack()
			return
		}
	}

	if cs.mailer != nil && len(cs.mailTo) > 0 {
		if err := cs.mailer.SendAct(cs.actMail(envelope)); err != nil {
			// the event is already forwarded, a redelivery would duplicate it
			log.Printf("[ERROR] Failed to email act for record %s: %v", recordID, err)
		}
	}

	log.Printf("[SUCCESS] Workflow event processed for record %s", recordID)
	msg.Ack()
}

func (cs *consumerService) actMail(envelope EventEnvelope) mailer.ActMail {
	p := envelope.Payload
	str := func(key string) string {
		s, _ := p[key].(string)
		return s
	}

	mail := mailer.ActMail{
		To:      cs.mailTo,
		Subject: fmt.Sprintf("IT-Invent: %s act %s", str("mode"), str("record_id")),
		Lines: []string{
			fmt.Sprintf("Workflow: %s", str("mode")),
			fmt.Sprintf("Database: %s", str("database_id")),
			fmt.Sprintf("Operator: %s", str("user_id")),
			fmt.Sprintf("Recorded at: %s", envelope.OccurredAt.Format("2006-01-02 15:04:05")),
		},
	}
	if s := str("serial"); s != "" {
		mail.Lines = append(mail.Lines, "Serial number: "+s)
	}

	docs, _ := p["documents"].([]interface{})
	for _, d := range docs {
		if name, ok := d.(string); ok && name != "" {
			mail.Attachments = append(mail.Attachments, filepath.Join(cs.actsDir, name))
		}
	}
	return mail
}
