package ws

import (
	"sync"

	domainchat "findy/internal/domain/chat"
	domainuser "findy/internal/domain/user"
)

// UserRoom is the personal room every authenticated socket joins; direct
// notifications are delivered here regardless of which conversations are open.
func UserRoom(id domainuser.ID) string {
	return "user:" + string(id)
}

// ConversationRoom is the room a socket joins while a conversation is on
// screen.
func ConversationRoom(id domainchat.ConversationID) string {
	return "conversation:" + string(id)
}

// Hub tracks which clients are in which rooms on this instance. All methods
// are safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.trackRoom(room)
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
	c.untrackRoom(room)
}

// Unregister removes the client from every room it joined. Called once on
// disconnect.
func (h *Hub) Unregister(c *Client) {
	rooms := c.joinedRooms()
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		h.leaveLocked(c, room)
	}
}

func (h *Hub) leaveLocked(c *Client, room string) {
	set, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast queues payload for every client in the room. A client whose send
// buffer is full is skipped; the write pump closes slow connections.
func (h *Hub) Broadcast(room string, payload []byte) {
	h.BroadcastExcept(room, payload, nil)
}

// BroadcastExcept queues payload for every client in the room other than
// skip.
func (h *Hub) BroadcastExcept(room string, payload []byte, skip *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c == skip {
			continue
		}
		select {
		case c.send <- payload:
		default:
		}
	}
}

// RoomSize reports how many clients are currently in the room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
