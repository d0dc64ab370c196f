package websocket

import (
	"errors"
	"time"

	"flowcore/internal/api/models"
	"flowcore/internal/editor"
)

// UserInfo represents user information in the room
type UserInfo struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Color    string `json:"color"`
	CanEdit  bool   `json:"canEdit"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Error         string `json:"error,omitempty"`
	CustomMessage string `json:"customMessage"`
}

type AddNodePayload struct {
	Type models.NodeType `json:"type" validate:"required,oneof=start database filter response process"`
}

type UpdateConfigPayload struct {
	NodeID string         `json:"nodeId" validate:"required"`
	Config map[string]any `json:"config" validate:"required"`
}

// NodePayload targets one node. An empty NodeID means the selection.
type NodePayload struct {
	NodeID string `json:"nodeId"`
}

type ConnectPayload struct {
	From models.PinRef `json:"from"`
	To   models.PinRef `json:"to"`
}

type ConnectionPayload struct {
	ConnectionID string `json:"connectionId" validate:"required"`
}

type FlowChangedPayload struct {
	Revision uint64      `json:"revision"`
	Flow     models.Flow `json:"flow"`
}

type RejectedPayload struct {
	editor.Verdict
	Request MessageType `json:"request"`
}

// NewErrorMessage creates a new error message
func NewErrorMessage(endpointID uint, userID uint, username string, errorText string, errs ...error) Message {
	data := ErrorMessage{CustomMessage: errorText}
	if err := errors.Join(errs...); err != nil {
		data.Error = err.Error()
	}
	return Message{
		Type:       MessageTypeError,
		EndpointID: endpointID,
		UserID:     userID,
		Username:   username,
		Timestamp:  time.Now(),
		Data:       data,
	}
}

// NewUserJoinMessage creates a new user join message
func NewUserJoinMessage(endpointID uint, userInfo UserInfo) Message {
	return Message{
		Type:       MessageTypeUserJoin,
		EndpointID: endpointID,
		UserID:     userInfo.UserID,
		Username:   userInfo.Username,
		Timestamp:  time.Now(),
		Data:       userInfo,
	}
}

// NewUserLeaveMessage creates a new user leave message
func NewUserLeaveMessage(endpointID uint, userInfo UserInfo) Message {
	return Message{
		Type:       MessageTypeUserLeave,
		EndpointID: endpointID,
		UserID:     userInfo.UserID,
		Username:   userInfo.Username,
		Timestamp:  time.Now(),
		Data:       userInfo,
	}
}

// NewFlowChangedMessage announces a new document revision to a room. userID is
// 0 for changes that did not come from a socket.
func NewFlowChangedMessage(endpointID uint, userID uint, username string, revision uint64, flow models.Flow) Message {
	return Message{
		Type:       MessageTypeFlowChanged,
		EndpointID: endpointID,
		UserID:     userID,
		Username:   username,
		Timestamp:  time.Now(),
		Data:       FlowChangedPayload{Revision: revision, Flow: flow},
	}
}

func reply(msg *Message, t MessageType, data any) Message {
	return Message{
		Type:       t,
		EndpointID: msg.EndpointID,
		UserID:     msg.UserID,
		Username:   msg.Username,
		Timestamp:  time.Now(),
		Data:       data,
	}
}
