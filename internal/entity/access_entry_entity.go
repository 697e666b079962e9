package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	AccessKindUser  = "user"
	AccessKindGroup = "group"
)

type AccessEntry struct {
	Id        uuid.UUID
	Kind      string
	Subject   string
	Note      string
	Active    bool
	CreatedAt time.Time
}
