package ws

import (
	"encoding/json"
	"testing"
)

func drainOne(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case payload := <-c.send:
		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		return env
	default:
		t.Fatal("expected a queued frame")
		return Envelope{}
	}
}

func TestEmitToRoomAndUserDeduplicates(t *testing.T) {
	hub := NewHub()

	inRoom := newClient(1, hub, nil)
	listOnly := newClient(1, hub, nil)
	hub.Register(inRoom)
	hub.Register(listOnly)
	hub.JoinRoom(42, inRoom)

	hub.EmitToRoomAndUser(42, 1, EventNewMessage, map[string]string{"content": "merhaba"})

	if got := len(inRoom.send); got != 1 {
		t.Fatalf("room member: expected exactly 1 frame, got %d", got)
	}
	if got := len(listOnly.send); got != 1 {
		t.Fatalf("user socket outside room: expected exactly 1 frame, got %d", got)
	}
	if env := drainOne(t, inRoom); env.Event != EventNewMessage {
		t.Fatalf("expected %s, got %s", EventNewMessage, env.Event)
	}
}

func TestEmitToRoomSkipsNonMembers(t *testing.T) {
	hub := NewHub()

	member := newClient(1, hub, nil)
	outsider := newClient(2, hub, nil)
	hub.Register(member)
	hub.Register(outsider)
	hub.JoinRoom(7, member)

	hub.EmitToRoom(7, EventMessagesRead, nil)

	if len(member.send) != 1 {
		t.Fatalf("member: expected 1 frame, got %d", len(member.send))
	}
	if len(outsider.send) != 0 {
		t.Fatalf("outsider: expected no frames, got %d", len(outsider.send))
	}
}

func TestUnregisterClosesAndLeavesRooms(t *testing.T) {
	hub := NewHub()

	c := newClient(3, hub, nil)
	hub.Register(c)
	hub.JoinRoom(9, c)

	hub.Unregister(c)

	if hub.InRoom(9, c) {
		t.Fatal("expected client removed from room")
	}
	if _, ok := <-c.send; ok {
		t.Fatal("expected send channel closed")
	}

	hub.EmitToUser(3, EventNewMessage, nil) // must not panic on a gone user
}

func TestEmitDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := newClient(4, hub, nil)
	hub.Register(c)

	for i := 0; i < cap(c.send); i++ {
		c.send <- []byte("{}")
	}

	// A full buffer drops the frame instead of blocking
	c.Emit(EventNewMessage, nil)

	if len(c.send) != cap(c.send) {
		t.Fatalf("expected buffer to stay at capacity, got %d", len(c.send))
	}
}

func TestLeaveRoom(t *testing.T) {
	hub := NewHub()
	c := newClient(5, hub, nil)
	hub.Register(c)
	hub.JoinRoom(11, c)

	if !hub.InRoom(11, c) {
		t.Fatal("expected membership after join")
	}
	hub.LeaveRoom(11, c)
	if hub.InRoom(11, c) {
		t.Fatal("expected membership gone after leave")
	}
}
