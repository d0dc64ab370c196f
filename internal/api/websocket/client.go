package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// pingPeriod stays under pongWait so a live peer never hits the read deadline.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

// Client is one websocket connection on an endpoint room. Editor operations are
// queued to a single worker so a client's edits apply in arrival order.

type Client struct {
	ID         string
	UserID     uint
	Username   string
	EndpointID uint
	Color      string
	// CanEdit is false for viewers; they receive updates but cannot take the writer lease.
	CanEdit      bool
	Hub          *Hub
	Conn         *websocket.Conn
	Send         chan Message
	Processor    *MessageProcessor
	ProcessQueue chan Message
	Logger       zerolog.Logger

	workerDone chan struct{}
}

func NewClient(id string, userID uint, username string, endpointID uint, canEdit bool, hub *Hub, conn *websocket.Conn, processor *MessageProcessor, logger zerolog.Logger) *Client {
	client := &Client{
		ID:           id,
		UserID:       userID,
		Username:     username,
		EndpointID:   endpointID,
		Color:        generateUserColor(userID),
		CanEdit:      canEdit,
		Hub:          hub,
		Conn:         conn,
		Send:         make(chan Message, 256),
		Processor:    processor,
		ProcessQueue: make(chan Message, 100),
		Logger:       logger.With().Str("clientId", id).Uint("endpointId", endpointID).Logger(),
		workerDone:   make(chan struct{}),
	}

	go client.processWorker()

	return client
}

func (c *Client) Info() UserInfo {
	return UserInfo{UserID: c.UserID, Username: c.Username, Color: c.Color, CanEdit: c.CanEdit}
}

func (c *Client) ReadPump() {
	defer func() {
		// The worker may still reply on Send, so it must finish before the hub closes it.
		close(c.ProcessQueue)
		<-c.workerDone
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Logger.Error().Err(err).Msg("WebSocket read error")
			}
			break
		}

		var msg Message
		if err = json.Unmarshal(messageBytes, &msg); err != nil {
			c.Logger.Error().Err(err).Msg("Failed to unmarshal message")
			c.sendError("Invalid message format", err)
			continue
		}

		if !c.validateMessage(&msg) {
			continue
		}

		msg.UserID = c.UserID
		msg.Username = c.Username
		msg.EndpointID = c.EndpointID
		msg.Timestamp = time.Now()

		// Cursor and chat skip the session.
		if !c.requiresProcessing(msg.Type) {
			c.Hub.Broadcast <- msg
			continue
		}

		select {
		case c.ProcessQueue <- msg:
		default:
			c.Logger.Warn().
				Str("type", string(msg.Type)).
				Msg("Process queue full, dropping message")
			c.sendError("Server is busy, please try again")
		}
	}
}

// WritePump batches queued messages into one frame, newline separated.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			messageBytes, err := json.Marshal(message)
			if err != nil {
				c.Logger.Error().Err(err).Msg("Failed to marshal message")
				continue
			}
			w.Write(messageBytes)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				msg := <-c.Send
				msgBytes, _ := json.Marshal(msg)
				w.Write(msgBytes)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// validateMessage rejects untyped frames and frames for another endpoint.
func (c *Client) validateMessage(msg *Message) bool {
	if msg.Type == "" {
		c.sendError("Message type is required")
		return false
	}
	if msg.EndpointID != 0 && msg.EndpointID != c.EndpointID {
		c.sendError("Message endpoint ID does not match connection endpoint ID")
		return false
	}
	return true
}

func (c *Client) sendError(errorMsg string, errs ...error) {
	c.deliver(NewErrorMessage(c.EndpointID, c.UserID, c.Username, errorMsg, errs...))
}

func (c *Client) deliver(msg Message) {
	select {
	case c.Send <- msg:
	default:
		c.Logger.Warn().Str("type", string(msg.Type)).Msg("Client send buffer full, message dropped")
	}
}

// processWorker owns the client's session membership: it leaves the session
// once the queue is closed.
func (c *Client) processWorker() {
	defer close(c.workerDone)
	c.Logger.Debug().Msg("Process worker started")

	for msg := range c.ProcessQueue {
		if c.Processor == nil {
			continue
		}
		out, err := c.Processor.ProcessMessage(c, &msg)
		if err != nil {
			c.Logger.Debug().
				Err(err).
				Str("type", string(msg.Type)).
				Uint("userId", msg.UserID).
				Msg("Failed to process message")
			c.sendError(err.Error())
			continue
		}

		for _, r := range out.Replies {
			c.deliver(r)
		}
		if out.Broadcast != nil {
			c.Hub.Broadcast <- *out.Broadcast
		}
	}

	if c.Processor != nil {
		c.Processor.Leave(c)
	}
	c.Logger.Debug().Msg("Process worker stopped")
}

func (c *Client) requiresProcessing(msgType MessageType) bool {
	return msgType.IsEditorOperation() || msgType == MessageTypePing
}

// generateUserColor is stable per user id.
func generateUserColor(userID uint) string {
	colors := []string{
		"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A",
		"#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E2",
		"#F8B739", "#52B788", "#E76F51", "#2A9D8F",
	}
	return colors[userID%uint(len(colors))]
}
