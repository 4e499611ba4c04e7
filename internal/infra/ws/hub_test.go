package ws

import (
	"testing"
)

func drainOne(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	default:
		t.Fatal("expected a queued payload")
		return nil
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("unexpected payload %s", payload)
	default:
	}
}

func TestHubBroadcastReachesRoomMembersOnly(t *testing.T) {
	hub := NewHub()
	alice := newClient(nil, "alice")
	bob := newClient(nil, "bob")
	eve := newClient(nil, "eve")

	room := ConversationRoom("c1")
	hub.Join(alice, room)
	hub.Join(bob, room)

	hub.Broadcast(room, []byte("hello"))

	if got := string(drainOne(t, alice)); got != "hello" {
		t.Fatalf("alice got %q", got)
	}
	if got := string(drainOne(t, bob)); got != "hello" {
		t.Fatalf("bob got %q", got)
	}
	assertEmpty(t, eve)
}

func TestHubBroadcastExceptSkipsSender(t *testing.T) {
	hub := NewHub()
	alice := newClient(nil, "alice")
	bob := newClient(nil, "bob")

	room := ConversationRoom("c1")
	hub.Join(alice, room)
	hub.Join(bob, room)

	hub.BroadcastExcept(room, []byte("typing"), alice)
	assertEmpty(t, alice)
	if got := string(drainOne(t, bob)); got != "typing" {
		t.Fatalf("bob got %q", got)
	}
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	alice := newClient(nil, "alice")
	room := ConversationRoom("c1")

	hub.Join(alice, room)
	hub.Leave(alice, room)
	hub.Broadcast(room, []byte("gone"))
	assertEmpty(t, alice)
	if hub.RoomSize(room) != 0 {
		t.Fatal("room should be empty after leave")
	}
}

func TestHubUnregisterClearsEveryRoom(t *testing.T) {
	hub := NewHub()
	alice := newClient(nil, "alice")

	personal := UserRoom("alice")
	convA := ConversationRoom("c1")
	convB := ConversationRoom("c2")
	for _, room := range []string{personal, convA, convB} {
		hub.Join(alice, room)
	}

	hub.Unregister(alice)
	for _, room := range []string{personal, convA, convB} {
		if hub.RoomSize(room) != 0 {
			t.Fatalf("room %s still has members after unregister", room)
		}
	}
	hub.Broadcast(personal, []byte("late"))
	assertEmpty(t, alice)
}

func TestHubMultipleClientsPerUser(t *testing.T) {
	hub := NewHub()
	tab1 := newClient(nil, "alice")
	tab2 := newClient(nil, "alice")

	personal := UserRoom("alice")
	hub.Join(tab1, personal)
	hub.Join(tab2, personal)

	hub.Broadcast(personal, []byte("notify"))
	if got := string(drainOne(t, tab1)); got != "notify" {
		t.Fatalf("tab1 got %q", got)
	}
	if got := string(drainOne(t, tab2)); got != "notify" {
		t.Fatalf("tab2 got %q", got)
	}
}
