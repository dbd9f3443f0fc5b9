package models

import "gorm.io/gorm"

// Favorite records a user bookmarking a listing, unique per pair.
type Favorite struct {
	gorm.Model
	UserID     uint     `json:"userID" gorm:"uniqueIndex:idx_favorites_user_property"`
	PropertyID uint     `json:"propertyID" gorm:"uniqueIndex:idx_favorites_user_property"`
	Property   Property `json:"property" gorm:"foreignKey:PropertyID"`
}
