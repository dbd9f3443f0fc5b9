package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/services"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated requests and dispatches socket events.
type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) Hub() *Hub { return h.hub }

// Serve is the iris route adapter for the upgrade endpoint.
func (h *Handler) Serve(ctx iris.Context) {
	h.ServeHTTP(ctx.ResponseWriter(), ctx.Request())
}

// ServeHTTP authenticates the bearer token before upgrading; browsers
// cannot set headers on websocket requests, so the token also travels in
// the "token" query parameter.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenStr = strings.TrimPrefix(auth, "Bearer ")
		}
	}

	claims, err := utils.ParseAccessToken(tokenStr)
	if err != nil {
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return
	}
	userID := claims.ID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := newClient(userID, h.hub, conn)
	h.hub.Register(client)

	go client.writePump()
	go h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: user %d read error: %v", c.UserID, err)
			}
			return
		}

		var env incomingEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.Emit(EventError, errorPayload{Message: "malformed event"})
			continue
		}

		switch env.Event {
		case EventJoinConversation:
			h.handleJoin(c, env.Data)
		case EventLeaveConversation:
			h.handleLeave(c, env.Data)
		case EventSendMessage:
			h.handleSendMessage(c, env.Data)
		case EventMarkAsRead:
			h.handleMarkAsRead(c, env.Data)
		default:
			c.Emit(EventError, errorPayload{Message: "unknown event: " + env.Event})
		}
	}
}

// handleJoin re-validates membership server-side before adding the socket
// to the conversation room.
func (h *Handler) handleJoin(c *Client, data json.RawMessage) {
	var input conversationInput
	if err := json.Unmarshal(data, &input); err != nil || input.ConversationID == 0 {
		c.Emit(EventError, errorPayload{Message: "conversationID is required"})
		return
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, input.ConversationID).Error; err != nil {
		c.Emit(EventError, errorPayload{Message: "conversation not found"})
		return
	}
	if !conversation.HasParticipant(c.UserID) {
		c.Emit(EventError, errorPayload{Message: "not a participant of this conversation"})
		return
	}

	h.hub.JoinRoom(conversation.ID, c)
}

func (h *Handler) handleLeave(c *Client, data json.RawMessage) {
	var input conversationInput
	if err := json.Unmarshal(data, &input); err != nil || input.ConversationID == 0 {
		c.Emit(EventError, errorPayload{Message: "conversationID is required"})
		return
	}
	h.hub.LeaveRoom(input.ConversationID, c)
}

// handleSendMessage persists first, then fans out. There is no transaction
// spanning the insert and the broadcast; a message persisted but never
// pushed is picked up by the next history fetch.
func (h *Handler) handleSendMessage(c *Client, data json.RawMessage) {
	var input sendMessageInput
	if err := json.Unmarshal(data, &input); err != nil || input.ConversationID == 0 {
		c.Emit(EventError, errorPayload{Message: "conversationID is required"})
		return
	}
	if strings.TrimSpace(input.Content) == "" {
		c.Emit(EventError, errorPayload{Message: "content is required"})
		return
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, input.ConversationID).Error; err != nil {
		c.Emit(EventError, errorPayload{Message: "conversation not found"})
		return
	}
	if !conversation.HasParticipant(c.UserID) {
		c.Emit(EventError, errorPayload{Message: "not a participant of this conversation"})
		return
	}
	if input.ReceiverID != conversation.OtherParticipantID(c.UserID) {
		c.Emit(EventError, errorPayload{Message: "receiver is not a participant of this conversation"})
		return
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       c.UserID,
		ReceiverID:     input.ReceiverID,
		Content:        input.Content,
	}
	if err := storage.DB.Create(&message).Error; err != nil {
		c.Emit(EventError, errorPayload{Message: "could not persist message"})
		return
	}
	storage.DB.Model(&models.Conversation{}).Where("id = ?", conversation.ID).
		Update("last_message_at", message.CreatedAt)

	h.hub.EmitToRoomAndUser(conversation.ID, input.ReceiverID, EventNewMessage, message)
	c.Emit(EventMessageSent, message)

	go services.NewNotificationService().SendMessageNotification(input.ReceiverID, c.UserID, conversation.PropertyID)
}

func (h *Handler) handleMarkAsRead(c *Client, data json.RawMessage) {
	var input conversationInput
	if err := json.Unmarshal(data, &input); err != nil || input.ConversationID == 0 {
		c.Emit(EventError, errorPayload{Message: "conversationID is required"})
		return
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, input.ConversationID).Error; err != nil {
		c.Emit(EventError, errorPayload{Message: "conversation not found"})
		return
	}
	if !conversation.HasParticipant(c.UserID) {
		c.Emit(EventError, errorPayload{Message: "not a participant of this conversation"})
		return
	}

	now := time.Now()
	storage.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversation.ID, c.UserID, false).
		Update("is_read", true)
	storage.DB.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversation.ID, c.UserID).
		Update("last_read_at", now)

	h.hub.EmitToRoom(conversation.ID, EventMessagesRead, MessagesReadPayload{
		ConversationID: conversation.ID,
		UserID:         c.UserID,
		ReadAt:         now,
	})
}
