package websocket

import (
	"time"
)

// Message is the envelope of every frame in both directions.
// Data field uses 'any' to allow different types through channels
type Message struct {
	Type       MessageType `json:"type"`
	EndpointID uint        `json:"endpointId,omitempty"`
	UserID     uint        `json:"userId"`
	Username   string      `json:"username"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
}

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Editor operations, client to server
	MessageTypeEditorPointer          MessageType = "editor_pointer"
	MessageTypeEditorAddNode          MessageType = "editor_add_node"
	MessageTypeEditorUpdateConfig     MessageType = "editor_update_config"
	MessageTypeEditorDeleteNode       MessageType = "editor_delete_node"
	MessageTypeEditorConnect          MessageType = "editor_connect"
	MessageTypeEditorRewire           MessageType = "editor_rewire"
	MessageTypeEditorDeleteConnection MessageType = "editor_delete_connection"
	MessageTypeEditorSelect           MessageType = "editor_select"
	MessageTypeEditorScene            MessageType = "editor_scene"

	// Editor results, server to clients
	MessageTypeFlowChanged    MessageType = "flow_changed"
	MessageTypeEditorRejected MessageType = "editor_rejected"

	// User interactions
	MessageTypeCursorMove MessageType = "cursor_move"
	MessageTypeChat       MessageType = "chat"
	MessageTypeUserJoin   MessageType = "user_join"
	MessageTypeUserLeave  MessageType = "user_leave"

	// System messages
	MessageTypeError MessageType = "error"
	MessageTypePing  MessageType = "ping"
	MessageTypePong  MessageType = "pong"
)

// IsEditorOperation reports whether t goes through the editor session.
func (t MessageType) IsEditorOperation() bool {
	switch t {
	case MessageTypeEditorPointer, MessageTypeEditorAddNode, MessageTypeEditorUpdateConfig,
		MessageTypeEditorDeleteNode, MessageTypeEditorConnect, MessageTypeEditorRewire,
		MessageTypeEditorDeleteConnection, MessageTypeEditorSelect, MessageTypeEditorScene:
		return true
	}
	return false
}

// mutates reports whether t needs the writer lease.
func (t MessageType) mutates() bool {
	return t.IsEditorOperation() && t != MessageTypeEditorScene
}
