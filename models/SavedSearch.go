package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SavedSearch persists a user's filter criteria so it can be re-run later,
// optionally notifying the user about new matches.
type SavedSearch struct {
	gorm.Model
	UserID          uint           `json:"userID" gorm:"index"`
	Name            string         `json:"name" gorm:"size:128"`
	Criteria        datatypes.JSON `json:"criteria" gorm:"type:jsonb"` // serialized search filters
	NotifyEnabled   bool           `json:"notifyEnabled" gorm:"default:false"`
	LastRunAt       *time.Time     `json:"lastRunAt"`
	LastResultCount int            `json:"lastResultCount"`
}
