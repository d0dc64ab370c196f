package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"flowcore/internal/api/models"
	"flowcore/internal/api/service"
	"flowcore/internal/editor"
	"flowcore/pkg"

	"github.com/rs/zerolog"
)

var (
	ErrReadOnly      = errors.New("read-only access to this flow")
	ErrSessionClosed = errors.New("editing session is closed")
)

// Outcome is what the hub must deliver after a message was processed.
type Outcome struct {
	// Broadcast goes to the whole room, sender included.
	Broadcast *Message
	// Replies go to the sender only, in order.
	Replies []Message
}

// MessageProcessor routes editor messages to the endpoint's editing session
type MessageProcessor struct {
	editorService *service.EditorService
	logger        zerolog.Logger
}

// NewMessageProcessor creates a new message processor
func NewMessageProcessor(editorService *service.EditorService, logger zerolog.Logger) *MessageProcessor {
	return &MessageProcessor{
		editorService: editorService,
		logger:        logger,
	}
}

// Join attaches a client to the session of its endpoint.
func (p *MessageProcessor) Join(c *Client) error {
	_, err := p.editorService.Join(c.EndpointID, c.ID)
	return err
}

// Leave detaches a client; the last one out saves the flow.
func (p *MessageProcessor) Leave(c *Client) {
	p.editorService.Leave(c.EndpointID, c.ID)
}

// ProcessMessage applies msg on behalf of c.
func (p *MessageProcessor) ProcessMessage(c *Client, msg *Message) (Outcome, error) {
	if msg.Type == MessageTypePing {
		return Outcome{Replies: []Message{reply(msg, MessageTypePong, nil)}}, nil
	}
	if !msg.Type.IsEditorOperation() {
		// Other message types don't require processing (chat, cursor, etc.)
		return Outcome{Broadcast: msg}, nil
	}
	if msg.Type.mutates() && !c.CanEdit {
		return Outcome{}, ErrReadOnly
	}

	session, ok := p.editorService.Session(c.EndpointID)
	if !ok {
		return Outcome{}, ErrSessionClosed
	}

	if msg.Type == MessageTypeEditorScene {
		var scene editor.Scene
		session.View(func(e *editor.Editor) { scene = e.Scene() })
		return Outcome{Replies: []Message{reply(msg, MessageTypeEditorScene, scene)}}, nil
	}

	op, err := p.decode(msg)
	if err != nil {
		return Outcome{}, err
	}

	var (
		verdict *editor.Verdict
		scene   editor.Scene
		opErr   error
	)
	res, err := session.Edit(c.ID, func(e *editor.Editor) {
		verdict, opErr = op(e)
		scene = e.Scene()
	})
	if err != nil {
		return Outcome{}, err
	}
	if opErr != nil {
		return Outcome{}, opErr
	}

	var out Outcome
	if verdict != nil && !verdict.OK {
		p.logger.Debug().
			Uint("endpointId", c.EndpointID).
			Str("reason", string(verdict.Reason)).
			Msg("Edit rejected")
		out.Replies = append(out.Replies, reply(msg, MessageTypeEditorRejected, RejectedPayload{Verdict: *verdict, Request: msg.Type}))
	}
	out.Replies = append(out.Replies, reply(msg, MessageTypeEditorScene, scene))
	if res.Changed {
		changed := NewFlowChangedMessage(c.EndpointID, msg.UserID, msg.Username, res.Revision, res.Flow)
		out.Broadcast = &changed
	}
	return out, nil
}

// editOp runs under the session lock and may return a verdict for the sender.
// An error means the editor was left untouched.
type editOp func(e *editor.Editor) (*editor.Verdict, error)

func (p *MessageProcessor) decode(msg *Message) (editOp, error) {
	switch msg.Type {
	case MessageTypeEditorPointer:
		var ev editor.PointerEvent
		if err := p.validateData(msg, &ev); err != nil {
			return nil, err
		}
		return func(e *editor.Editor) (*editor.Verdict, error) {
			return e.HandlePointer(ev).Rejected, nil
		}, nil

	case MessageTypeEditorAddNode:
		var data AddNodePayload
		if err := p.validateData(msg, &data); err != nil {
			return nil, err
		}
		return func(e *editor.Editor) (*editor.Verdict, error) {
			e.AddNode(data.Type)
			return nil, nil
		}, nil

	case MessageTypeEditorUpdateConfig:
		var data UpdateConfigPayload
		if err := p.validateData(msg, &data); err != nil {
			return nil, err
		}
		return func(e *editor.Editor) (*editor.Verdict, error) {
			if node, ok := e.Graph().FindNode(data.NodeID); ok {
				if err := checkConfig(*node, data.Config); err != nil {
					return nil, err
				}
			}
			e.UpdateNodeConfig(data.NodeID, data.Config)
			return nil, nil
		}, nil

	case MessageTypeEditorDeleteNode:
		var data NodePayload
		if err := p.validateData(msg, &data); err != nil {
			return nil, err
		}
		return func(e *editor.Editor) (*editor.Verdict, error) {
			if data.NodeID == "" {
				e.DeleteSelected()
			} else {
				e.DeleteNode(data.NodeID)
			}
			return nil, nil
		}, nil

	case MessageTypeEditorConnect, MessageTypeEditorRewire:
		var data ConnectPayload
		if err := p.validateData(msg, &data); err != nil {
			return nil, err
		}
		rewire := msg.Type == MessageTypeEditorRewire
		return func(e *editor.Editor) (*editor.Verdict, error) {
			var v editor.Verdict
			if rewire {
				_, v = e.Rewire(data.From, data.To)
			} else {
				_, v = e.Connect(data.From, data.To)
			}
			return &v, nil
		}, nil

	case MessageTypeEditorDeleteConnection:
		var data ConnectionPayload
		if err := p.validateData(msg, &data); err != nil {
			return nil, err
		}
		return func(e *editor.Editor) (*editor.Verdict, error) {
			e.DeleteConnection(data.ConnectionID)
			return nil, nil
		}, nil

	case MessageTypeEditorSelect:
		var data NodePayload
		if err := p.validateData(msg, &data); err != nil {
			return nil, err
		}
		return func(e *editor.Editor) (*editor.Verdict, error) {
			if data.NodeID == "" {
				e.ClearSelection()
			} else {
				e.Select(data.NodeID)
			}
			return nil, nil
		}, nil
	}
	return nil, fmt.Errorf("unsupported message type %q", msg.Type)
}

// checkConfig merges patch into a copy of the node's config and validates the
// result against the typed config of the node's type.
func checkConfig(node models.Node, patch map[string]any) error {
	candidate := node.Clone()
	for k, v := range patch {
		candidate.Config[k] = v
	}
	typed, err := candidate.TypedConfig()
	if err != nil {
		return fmt.Errorf("invalid %s config: %w", node.Type, err)
	}
	if err := pkg.Validate(typed); err != nil {
		return fmt.Errorf("invalid %s config: %w", node.Type, err)
	}
	return nil
}

func (p *MessageProcessor) validateData(msg *Message, out any) error {
	dataBytes, err := json.Marshal(msg.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal message data: %w", err)
	}

	if err := json.Unmarshal(dataBytes, out); err != nil {
		return fmt.Errorf("invalid message data: %w", err)
	}

	if err := pkg.Validate(out); err != nil {
		return fmt.Errorf("invalid message data: %w", err)
	}
	return nil
}
