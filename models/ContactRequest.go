package models

import "gorm.io/gorm"

const (
	ContactStatusPending   = "pending"
	ContactStatusResponded = "responded"
	ContactStatusClosed    = "closed"
)

// ContactRequest is a message from a visitor (authenticated or guest) to a
// listing's owner. Guests leave UserID nil.
type ContactRequest struct {
	gorm.Model
	PropertyID uint     `json:"propertyID" gorm:"index"`
	Property   Property `json:"property" gorm:"foreignKey:PropertyID"`
	UserID     *uint    `json:"userID" gorm:"index"`
	Name       string   `json:"name" gorm:"size:128"`
	Email      string   `json:"email" gorm:"size:256"`
	Phone      string   `json:"phone" gorm:"size:32"`
	Message    string   `json:"message" gorm:"type:text"`
	Status     string   `json:"status" gorm:"type:varchar(16);default:'pending';index"`
	IsRead     bool     `json:"isRead" gorm:"default:false;index"`
}
