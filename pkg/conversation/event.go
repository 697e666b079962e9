package conversation

import "itinvent-bot/pkg/access"

type EventKind string

const (
	EventText   EventKind = "text"
	EventPhoto  EventKind = "photo"
	EventAction EventKind = "action"
)

// Event is one inbound message or button press.
type Event struct {
	User   access.User
	Kind   EventKind
	Text   string
	Photo  []byte
	Action string
}

func TextEvent(user access.User, text string) Event {
	return Event{User: user, Kind: EventText, Text: text}
}

func PhotoEvent(user access.User, photo []byte) Event {
	return Event{User: user, Kind: EventPhoto, Photo: photo}
}

func ActionEvent(user access.User, token string) Event {
	return Event{User: user, Kind: EventAction, Action: token}
}
