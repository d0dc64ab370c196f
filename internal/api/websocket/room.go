package websocket

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Room is the set of connections open on one endpoint's flow.
type Room struct {
	EndpointID uint
	Clients    map[string]*Client
	mu         sync.RWMutex
	Logger     zerolog.Logger
}

func NewRoom(endpointID uint, logger zerolog.Logger) *Room {
	return &Room{
		EndpointID: endpointID,
		Clients:    make(map[string]*Client),
		Logger:     logger.With().Uint("endpointId", endpointID).Logger(),
	}
}

// AddClient announces the newcomer to everyone, then sends it the roster.
func (r *Room) AddClient(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Clients[client.ID] = client
	r.Logger.Info().
		Str("clientId", client.ID).
		Uint("userId", client.UserID).
		Bool("canEdit", client.CanEdit).
		Int("clients", len(r.Clients)).
		Msg("Client joined room")

	r.sendAll(NewUserJoinMessage(r.EndpointID, client.Info()))
	r.deliver(client, Message{
		Type:       MessageTypeUserJoin,
		EndpointID: r.EndpointID,
		Username:   "system",
		Timestamp:  time.Now(),
		Data:       map[string]any{"activeUsers": r.activeUsers()},
	})
}

// RemoveClient reports whether client was in the room.
func (r *Room) RemoveClient(client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.Clients[client.ID]; !ok {
		return false
	}
	delete(r.Clients, client.ID)
	r.Logger.Info().
		Str("clientId", client.ID).
		Uint("userId", client.UserID).
		Int("clients", len(r.Clients)).
		Msg("Client left room")

	r.sendAll(NewUserLeaveMessage(r.EndpointID, client.Info()))
	return true
}

func (r *Room) Broadcast(message Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.sendAll(message)
}

// sendAll needs r.mu.
func (r *Room) sendAll(message Message) {
	for _, c := range r.Clients {
		r.deliver(c, message)
	}
}

// deliver never blocks; a slow client loses the message.
func (r *Room) deliver(client *Client, message Message) {
	select {
	case client.Send <- message:
	default:
		r.Logger.Warn().
			Str("clientId", client.ID).
			Str("type", string(message.Type)).
			Msg("Client send buffer full, message dropped")
	}
}

func (r *Room) GetActiveUsers() []UserInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeUsers()
}

// activeUsers lists each user once, by user id. A user with several tabs open
// counts as an editor if any of them can edit.
func (r *Room) activeUsers() []UserInfo {
	byUser := make(map[uint]UserInfo, len(r.Clients))
	for _, c := range r.Clients {
		info, seen := byUser[c.UserID]
		if !seen {
			byUser[c.UserID] = c.Info()
			continue
		}
		if c.CanEdit && !info.CanEdit {
			info.CanEdit = true
			byUser[c.UserID] = info
		}
	}

	users := make([]UserInfo, 0, len(byUser))
	for _, u := range byUser {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users
}

func (r *Room) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients)
}
