package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessEntry allows one chat user or group. Kind is "user" or "group".
type AccessEntry struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind      string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_access_entries_subject,priority:1"`
	Subject   string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_access_entries_subject,priority:2"`
	Note      string    `gorm:"type:varchar(255)"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AccessEntry) TableName() string {
	return "access_entries"
}
