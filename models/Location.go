package models

import "gorm.io/gorm"

const (
	LocationKindCity         = "city"
	LocationKindDistrict     = "district"
	LocationKindNeighborhood = "neighborhood"
)

// Location is one node of the city > district > neighborhood hierarchy.
type Location struct {
	gorm.Model
	Name     string     `json:"name" gorm:"size:128;index"`
	Kind     string     `json:"kind" gorm:"type:varchar(16);index"`
	ParentID *uint      `json:"parentID" gorm:"index"`
	Children []Location `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}
