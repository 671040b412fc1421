package database

import (
	"gorm.io/gorm"

	"github.com/flowtrack/flowtrack-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// StableOrder orders tasks by creation time with the ID as tie-breaker.
func StableOrder(db *gorm.DB) *gorm.DB {
	return db.Order("tasks.created_at ASC").Order("tasks.id ASC")
}
