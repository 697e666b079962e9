package model

import "time"

type UserDatabaseSelection struct {
	UserId     string    `gorm:"type:varchar(64);primaryKey"`
	DatabaseId string    `gorm:"type:varchar(64);not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (UserDatabaseSelection) TableName() string {
	return "user_database_selections"
}
