package websocket

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub owns the endpoint rooms. Joins, leaves and room broadcasts are serialized
// through Run.
type Hub struct {
	Rooms map[uint]*Room

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan Message

	mu     sync.RWMutex
	Logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		Rooms:      make(map[uint]*Room),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Message, 256),
		Logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.join(client)
		case client := <-h.Unregister:
			h.leave(client)
		case message := <-h.Broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) join(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.Rooms[client.EndpointID]
	if !ok {
		room = NewRoom(client.EndpointID, h.Logger)
		h.Rooms[client.EndpointID] = room
		h.Logger.Debug().Uint("endpointId", client.EndpointID).Msg("Room opened")
	}
	room.AddClient(client)
}

// leave closes the client's Send channel; an empty room is dropped right away.
func (h *Hub) leave(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.Rooms[client.EndpointID]
	if !ok || !room.RemoveClient(client) {
		return
	}
	close(client.Send)

	if room.ClientCount() == 0 {
		delete(h.Rooms, client.EndpointID)
		h.Logger.Debug().Uint("endpointId", client.EndpointID).Msg("Room closed")
	}
}

func (h *Hub) fanOut(message Message) {
	h.mu.RLock()
	room, ok := h.Rooms[message.EndpointID]
	h.mu.RUnlock()

	if !ok {
		h.Logger.Debug().
			Uint("endpointId", message.EndpointID).
			Str("type", string(message.Type)).
			Msg("No room for message")
		return
	}
	room.Broadcast(message)
}

// GetRoomStats maps endpoint id to connected clients.
func (h *Hub) GetRoomStats() map[uint]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[uint]int, len(h.Rooms))
	for id, room := range h.Rooms {
		stats[id] = room.ClientCount()
	}
	return stats
}

// GetActiveUsersInRoom returns one entry per user editing or viewing endpointID.
func (h *Hub) GetActiveUsersInRoom(endpointID uint) []UserInfo {
	h.mu.RLock()
	room, ok := h.Rooms[endpointID]
	h.mu.RUnlock()

	if !ok {
		return []UserInfo{}
	}
	return room.GetActiveUsers()
}
