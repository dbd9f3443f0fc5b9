package ws

import (
	"encoding/json"
	"time"
)

// Envelope frames every message on the socket in both directions.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// incomingEnvelope defers payload decoding until the event is known.
type incomingEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client -> server events.
const (
	EventSendMessage       = "sendMessage"
	EventJoinConversation  = "joinConversation"
	EventLeaveConversation = "leaveConversation"
	EventMarkAsRead        = "markAsRead"
)

// Server -> client events.
const (
	EventNewMessage   = "newMessage"
	EventMessageSent  = "messageSent"
	EventMessagesRead = "messagesRead"
	EventError        = "error"
)

type sendMessageInput struct {
	Content        string `json:"content"`
	ReceiverID     uint   `json:"receiverID"`
	ConversationID uint   `json:"conversationID"`
}

type conversationInput struct {
	ConversationID uint `json:"conversationID"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// MessagesReadPayload mirrors the messagesRead event body; exported so the
// REST mark-read handler can emit the same shape.
type MessagesReadPayload struct {
	ConversationID uint      `json:"conversationID"`
	UserID         uint      `json:"userID"`
	ReadAt         time.Time `json:"readAt"`
}
