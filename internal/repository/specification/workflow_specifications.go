package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByMode struct {
	Mode string
}

func (s ByMode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("mode = ?", s.Mode)
}

type ByDatabaseID struct {
	DatabaseID string
}

func (s ByDatabaseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("database_id = ?", s.DatabaseID)
}

type ByUserID struct {
	UserID string
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// BySerial matches serial numbers case-insensitively.
type BySerial struct {
	Serial string
}

func (s BySerial) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(serial) = LOWER(?)", s.Serial)
}

type CreatedSince struct {
	Since time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}
