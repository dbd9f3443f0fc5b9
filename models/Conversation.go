package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a two-party thread anchored to one listing. The unique
// index over (property, owner, visitor) guards against duplicate threads
// for the same pair.
type Conversation struct {
	gorm.Model
	PropertyID uint     `json:"propertyID" gorm:"uniqueIndex:idx_conversations_pair"`
	OwnerID    uint     `json:"ownerID" gorm:"uniqueIndex:idx_conversations_pair"`
	VisitorID  uint     `json:"visitorID" gorm:"uniqueIndex:idx_conversations_pair"`
	Property   Property `json:"property" gorm:"foreignKey:PropertyID"`
	Owner      User     `json:"owner" gorm:"foreignKey:OwnerID"`
	Visitor    User     `json:"visitor" gorm:"foreignKey:VisitorID"`

	Participants []ConversationParticipant `json:"participants"`
	Messages     []Message                 `json:"messages,omitempty"`

	LastMessageAt time.Time `json:"lastMessageAt" gorm:"index"`
}

// HasParticipant reports whether the user is one of the two parties.
func (c *Conversation) HasParticipant(userID uint) bool {
	return userID == c.OwnerID || userID == c.VisitorID
}

// OtherParticipantID returns the peer of the given participant.
func (c *Conversation) OtherParticipantID(userID uint) uint {
	if userID == c.OwnerID {
		return c.VisitorID
	}
	return c.OwnerID
}

// ConversationParticipant tracks a user's membership in a conversation and
// their read progress, the basis for unread counts.
type ConversationParticipant struct {
	gorm.Model
	ConversationID uint       `json:"conversationID" gorm:"uniqueIndex:idx_participants_once"`
	UserID         uint       `json:"userID" gorm:"uniqueIndex:idx_participants_once"`
	User           User       `json:"user" gorm:"foreignKey:UserID"`
	JoinedAt       time.Time  `json:"joinedAt"`
	LastReadAt     *time.Time `json:"lastReadAt"`
}
