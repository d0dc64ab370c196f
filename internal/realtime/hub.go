package realtime

import "github.com/rs/zerolog"

// Hub manages WebSocket clients and routes messages by endpointID.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// endpointID -> set of subscribed clients
	subscriptions map[uint]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscribeMsg
	unsubscribe chan subscribeMsg
	broadcast   chan broadcastMsg

	logger zerolog.Logger
}

type subscribeMsg struct {
	client     *Client
	endpointID uint
}

type broadcastMsg struct {
	endpointID uint
	payload    []byte
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[uint]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan subscribeMsg),
		unsubscribe:   make(chan subscribeMsg),
		broadcast:     make(chan broadcastMsg, 256),
		logger:        logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug().Int("total", len(h.clients)).Msg("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug().Int("total", len(h.clients)).Msg("client unregistered")
			}

		case msg := <-h.subscribe:
			if !h.clients[msg.client] {
				continue
			}
			if _, ok := h.subscriptions[msg.endpointID]; !ok {
				h.subscriptions[msg.endpointID] = make(map[*Client]bool)
			}
			h.subscriptions[msg.endpointID][msg.client] = true
			h.logger.Debug().
				Uint("endpointId", msg.endpointID).
				Int("subscribers", len(h.subscriptions[msg.endpointID])).
				Msg("client subscribed")

		case msg := <-h.unsubscribe:
			if subs, ok := h.subscriptions[msg.endpointID]; ok {
				delete(subs, msg.client)
				if len(subs) == 0 {
					delete(h.subscriptions, msg.endpointID)
				}
			}

		case msg := <-h.broadcast:
			for client := range h.subscriptions[msg.endpointID] {
				select {
				case client.send <- msg.payload:
				default:
					// Client buffer full, remove it
					h.logger.Warn().Uint("endpointId", msg.endpointID).Msg("slow client dropped")
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	for endpointID, subs := range h.subscriptions {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, endpointID)
		}
	}
}
