package entity

import "time"

type UserDatabaseSelection struct {
	UserId     string
	DatabaseId string
	UpdatedAt  time.Time
}
