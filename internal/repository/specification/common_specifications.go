package specification

import (
	"fmt"

	"gorm.io/gorm"
)

// OrderBy applies ordering. Field is a column name chosen by the caller, never user input.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}
