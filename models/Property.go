package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lifecycle states of a listing. Transitions are enforced in the routes
// layer: draft -> published, published -> sold | inactive, inactive -> published.
const (
	PropertyStatusDraft     = "draft"
	PropertyStatusPublished = "published"
	PropertyStatusSold      = "sold"
	PropertyStatusInactive  = "inactive"
)

type Property struct {
	gorm.Model
	OwnerID     uint    `json:"ownerID" gorm:"index"`
	Title       string  `json:"title"`
	Description string  `json:"description" gorm:"type:text"`
	Category    string  `json:"category" gorm:"type:varchar(32);index"` // residential_zoned, commercial_zoned, agricultural, field, orchard
	Status      string  `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency" gorm:"type:varchar(8);default:'TRY'"`
	AreaM2      float64 `json:"areaM2"`

	// Cadastral identity and zoning
	BlockNo      string `json:"blockNo" gorm:"size:32"`  // ada
	ParcelNo     string `json:"parcelNo" gorm:"size:32"` // parsel
	ZoningStatus string `json:"zoningStatus" gorm:"size:64"`

	LocationID *uint    `json:"locationID" gorm:"index"`
	Location   Location `json:"location" gorm:"foreignKey:LocationID"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`

	// Free-form detail attributes (road access, utilities, slope, ...)
	Attributes datatypes.JSON `json:"attributes" gorm:"type:jsonb"`
	Images     string         `json:"images"` // JSON array of URLs, upload order preserved

	Owner User `json:"owner" gorm:"foreignKey:OwnerID;references:ID"`

	// Admin moderation
	IsFlagged  bool   `json:"isFlagged" gorm:"default:false;index"`
	FlagReason string `json:"flagReason" gorm:"type:text"`
}

// Custom JSON marshaling to convert the Images string column to an array
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Images []string `json:"images"`
		Owner  *User    `json:"owner,omitempty"`
		*Alias
	}{
		Images: []string{},
		Alias:  (*Alias)(p),
	}

	if p.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(p.Images), &images); err == nil {
			aux.Images = images
		}
	}

	// Only include the owner when loaded, with Properties stripped to avoid
	// a circular reference
	if p.Owner.ID > 0 {
		ownerCopy := p.Owner
		ownerCopy.Properties = nil
		aux.Owner = &ownerCopy
	}

	return json.Marshal(aux)
}

// ValidStatusTransition reports whether a listing may move between the
// two lifecycle states.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case PropertyStatusDraft:
		return to == PropertyStatusPublished
	case PropertyStatusPublished:
		return to == PropertyStatusSold || to == PropertyStatusInactive
	case PropertyStatusInactive:
		return to == PropertyStatusPublished
	}
	return false
}
