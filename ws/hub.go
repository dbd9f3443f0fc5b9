package ws

import (
	"sync"
)

// Hub tracks connected clients per user and room membership per
// conversation. A user may hold several sockets at once (multiple tabs);
// every emit targets all of them.
type Hub struct {
	mu    sync.RWMutex
	users map[uint]map[*Client]bool // userID -> connections
	rooms map[uint]map[*Client]bool // conversationID -> connections
}

func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[*Client]bool),
		rooms: make(map[uint]map[*Client]bool),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[c.UserID] == nil {
		h.users[c.UserID] = make(map[*Client]bool)
	}
	h.users[c.UserID][c] = true
}

// Unregister drops the client from its user set and every room it joined,
// and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.users[c.UserID]; ok {
		if clients[c] {
			delete(clients, c)
			close(c.send)
		}
		if len(clients) == 0 {
			delete(h.users, c.UserID)
		}
	}
	for convID, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, convID)
		}
	}
}

func (h *Hub) JoinRoom(conversationID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = make(map[*Client]bool)
	}
	h.rooms[conversationID][c] = true
}

func (h *Hub) LeaveRoom(conversationID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[conversationID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}

// InRoom reports current membership, used by handlers and tests.
func (h *Hub) InRoom(conversationID uint, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[conversationID][c]
}

func (h *Hub) EmitToRoom(conversationID uint, event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[conversationID] {
		client.Emit(event, data)
	}
}

func (h *Hub) EmitToUser(userID uint, event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.users[userID] {
		client.Emit(event, data)
	}
}

// EmitToRoomAndUser delivers one event to every socket in the room plus
// every socket of the given user, without duplicates. Used for newMessage
// so the receiver's conversation list updates even when the thread is not
// open.
func (h *Hub) EmitToRoomAndUser(conversationID uint, userID uint, event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[*Client]bool)
	for client := range h.rooms[conversationID] {
		seen[client] = true
		client.Emit(event, data)
	}
	for client := range h.users[userID] {
		if !seen[client] {
			client.Emit(event, data)
		}
	}
}
