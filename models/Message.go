package models

import "gorm.io/gorm"

// Message belongs to exactly one conversation. Immutable once created
// except for the read flag.
type Message struct {
	gorm.Model
	ConversationID uint   `json:"conversationID" gorm:"index"`
	SenderID       uint   `json:"senderID"`
	ReceiverID     uint   `json:"receiverID" gorm:"index"`
	Content        string `json:"content" gorm:"type:text"`
	IsRead         bool   `json:"isRead" gorm:"default:false;index"`
}
