package editor

import (
	"math"

	"flowcore/internal/api/models"
)

type Mode string

const (
	ModeIdle               Mode = "idle"
	ModePanning            Mode = "panning"
	ModeDraggingNode       Mode = "dragging_node"
	ModeDraggingConnection Mode = "dragging_connection"
)

type PanPayload struct {
	// Origin is the screen point of the pointer-down.
	Origin       Point `json:"origin"`
	ScrollOrigin Point `json:"scrollOrigin"`
}

type NodeDragPayload struct {
	NodeID string `json:"nodeId"`
	// Offset is pointer minus node origin at pointer-down, fixed for the drag.
	Offset Point `json:"offset"`
	Start  Point `json:"start"`
}

type ConnectionDragPayload struct {
	From    models.PinRef `json:"from"`
	Pointer Point         `json:"pointer"`
}

// State is the interaction state of one editor. Exactly one payload matching Mode
// is set; Idle carries none. Selected and Scroll survive mode changes.
type State struct {
	Mode     Mode                   `json:"mode"`
	Pan      *PanPayload            `json:"pan,omitempty"`
	NodeDrag *NodeDragPayload       `json:"nodeDrag,omitempty"`
	ConnDrag *ConnectionDragPayload `json:"connectionDrag,omitempty"`
	Selected string                 `json:"selected,omitempty"`
	Scroll   Point                  `json:"scroll"`
}

func IdleState() State { return State{Mode: ModeIdle} }

func (s State) idle() State {
	return State{Mode: ModeIdle, Selected: s.Selected, Scroll: s.Scroll}
}

type PointerKind string

const (
	PointerDown  PointerKind = "down"
	PointerMove  PointerKind = "move"
	PointerUp    PointerKind = "up"
	PointerLeave PointerKind = "leave"
	PointerClick PointerKind = "click"
)

// PointerEvent is a pointer sample in viewport (screen) coordinates.
type PointerEvent struct {
	Kind   PointerKind `json:"kind" validate:"required,oneof=down move up leave click"`
	Screen Point       `json:"screen"`
}

type MutationKind string

const (
	MutationMoveNode         MutationKind = "move_node"
	MutationConnect          MutationKind = "connect"
	MutationDeleteConnection MutationKind = "delete_connection"
)

// Mutation is a graph change requested by the reducer. Connection ids are assigned
// when the mutation is applied.
type Mutation struct {
	Kind         MutationKind  `json:"kind"`
	NodeID       string        `json:"nodeId,omitempty"`
	Position     Point         `json:"position"`
	From         models.PinRef `json:"from"`
	To           models.PinRef `json:"to"`
	ConnectionID string        `json:"connectionId,omitempty"`
}

type Transition struct {
	State     State      `json:"state"`
	Mutations []Mutation `json:"mutations,omitempty"`
	// Rejected is set when a connection drop failed validation.
	Rejected *Verdict `json:"rejected,omitempty"`
}

// Reduce computes the next interaction state for ev. It reads g but never
// mutates it.
func Reduce(s State, g *Graph, ev PointerEvent, l Layout) Transition {
	l = l.withDefaults()
	content := ev.Screen.Add(s.Scroll)

	switch ev.Kind {
	case PointerDown:
		if s.Mode != ModeIdle {
			return Transition{State: s}
		}
		return pointerDown(s, g, ev.Screen, content, l)

	case PointerMove:
		return pointerMove(s, g, ev.Screen, content)

	case PointerUp:
		return pointerUp(s, g, content, l)

	case PointerLeave:
		return Transition{State: s.idle()}

	case PointerClick:
		hit := HitTest(g, content, l)
		next := s
		switch hit.Kind {
		case HitNode, HitPin:
			next.Selected = hit.NodeID
		case HitCanvas:
			next.Selected = ""
		}
		return Transition{State: next}
	}
	return Transition{State: s}
}

func pointerDown(s State, g *Graph, screen, content Point, l Layout) Transition {
	hit := HitTest(g, content, l)
	switch hit.Kind {
	case HitConnection:
		return Transition{
			State:     s,
			Mutations: []Mutation{{Kind: MutationDeleteConnection, ConnectionID: hit.ConnectionID}},
		}

	case HitPin:
		if hit.Direction != models.PinOutput {
			return Transition{State: s}
		}
		start, _ := PinPosition(g, hit.Pin, l)
		next := s.idle()
		next.Mode = ModeDraggingConnection
		next.ConnDrag = &ConnectionDragPayload{From: hit.Pin, Pointer: start}
		return Transition{State: next}

	case HitNode:
		node, _ := g.FindNode(hit.NodeID)
		origin := Point{X: node.X, Y: node.Y}
		next := s.idle()
		next.Mode = ModeDraggingNode
		next.NodeDrag = &NodeDragPayload{NodeID: node.ID, Offset: content.Sub(origin), Start: origin}
		next.Selected = node.ID
		return Transition{State: next}

	default:
		next := s.idle()
		next.Mode = ModePanning
		next.Pan = &PanPayload{Origin: screen, ScrollOrigin: s.Scroll}
		next.Selected = ""
		return Transition{State: next}
	}
}

func pointerMove(s State, g *Graph, screen, content Point) Transition {
	switch s.Mode {
	case ModePanning:
		delta := screen.Sub(s.Pan.Origin)
		next := s
		next.Scroll = Point{
			X: math.Max(0, s.Pan.ScrollOrigin.X-delta.X),
			Y: math.Max(0, s.Pan.ScrollOrigin.Y-delta.Y),
		}
		return Transition{State: next}

	case ModeDraggingNode:
		if _, ok := g.FindNode(s.NodeDrag.NodeID); !ok {
			return Transition{State: s.idle()}
		}
		pos := content.Sub(s.NodeDrag.Offset)
		pos = Point{X: math.Max(0, pos.X), Y: math.Max(0, pos.Y)}
		return Transition{
			State:     s,
			Mutations: []Mutation{{Kind: MutationMoveNode, NodeID: s.NodeDrag.NodeID, Position: pos}},
		}

	case ModeDraggingConnection:
		next := s
		drag := *s.ConnDrag
		drag.Pointer = content
		next.ConnDrag = &drag
		return Transition{State: next}
	}
	return Transition{State: s}
}

func pointerUp(s State, g *Graph, content Point, l Layout) Transition {
	if s.Mode != ModeDraggingConnection {
		return Transition{State: s.idle()}
	}
	hit := HitTest(g, content, l)
	if hit.Kind != HitPin {
		return Transition{State: s.idle()}
	}
	from := s.ConnDrag.From
	verdict := CanConnect(g, from, hit.Pin)
	if !verdict.OK {
		return Transition{State: s.idle(), Rejected: &verdict}
	}
	return Transition{
		State:     s.idle(),
		Mutations: []Mutation{{Kind: MutationConnect, From: from, To: hit.Pin}},
	}
}
