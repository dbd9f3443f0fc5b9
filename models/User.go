package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser       = "user"
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email" gorm:"uniqueIndex"`
	PhoneNumber         string         `json:"phoneNumber"`
	Password            string         `json:"-"`
	SocialLogin         bool           `json:"socialLogin"`
	SocialProvider      string         `json:"socialProvider"`
	AvatarURL           string         `json:"avatarURL"`
	Bio                 string         `json:"bio"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
	Suspended           bool           `json:"suspended" gorm:"default:false"`
	Properties          []Property     `json:"properties" gorm:"foreignKey:OwnerID;references:ID"`
	Favorites           []Favorite     `json:"favorites"`
	SavedSearches       []SavedSearch  `json:"savedSearches"`
	Role                string         `json:"role" gorm:"type:varchar(20);default:user;index"` // user, owner, admin, super_admin
}

// Custom JSON marshaling to expose the push token JSON column as an array
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		PushTokens []string   `json:"pushTokens,omitempty"`
		Properties []Property `json:"properties,omitempty"`
		*Alias
	}{
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	if u.PushTokens != nil {
		var tokens []string
		if err := json.Unmarshal(u.PushTokens, &tokens); err == nil {
			aux.PushTokens = tokens
		}
	}

	// Properties are dropped here to prevent a circular reference through Owner
	return json.Marshal(aux)
}
