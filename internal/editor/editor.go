package editor

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"flowcore/internal/api/models"
)

// ChangeFunc receives the full document after every mutation.
type ChangeFunc func(key string, flow models.Flow)

type Option func(*Editor)

func WithLayout(l Layout) Option {
	return func(e *Editor) { e.layout = l.withDefaults() }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithIDGenerator replaces uuid.NewString for node and connection ids.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) { e.newID = fn }
}

func OnChange(fn ChangeFunc) Option {
	return func(e *Editor) { e.onChange = fn }
}

// Editor owns the graph and interaction state of the flow being edited. It is
// not safe for concurrent use; callers serialize access.
type Editor struct {
	key      string
	graph    *Graph
	state    State
	layout   Layout
	newID    func() string
	onChange ChangeFunc
	logger   zerolog.Logger
}

func New(opts ...Option) *Editor {
	e := &Editor{
		graph:  NewGraph(models.Flow{}),
		state:  IdleState(),
		layout: DefaultLayout(),
		newID:  uuid.NewString,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load discards the current model and interaction state and starts editing flow
// under key. It always resets, even when key is unchanged.
func (e *Editor) Load(key string, flow models.Flow) {
	e.key = key
	e.graph = NewGraph(flow)
	e.state = IdleState()
	e.logger.Debug().Str("key", key).Int("nodes", len(flow.Nodes)).Msg("flow loaded")
}

func (e *Editor) Key() string { return e.key }

func (e *Editor) Graph() *Graph { return e.graph }

func (e *Editor) State() State { return e.state }

func (e *Editor) Layout() Layout { return e.layout }

func (e *Editor) Selected() string { return e.state.Selected }

func (e *Editor) Flow() models.Flow { return e.graph.Flow() }

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange(e.key, e.graph.Flow())
	}
}

// AddNode creates a node of type t from its template, placed to the right of the
// selection (or of the rightmost node), selects it and returns it.
func (e *Editor) AddNode(t models.NodeType) (models.Node, bool) {
	pos := PlaceNewNode(e.graph, e.state.Selected, e.state.Scroll, e.layout)
	node, ok := NewNode(t, e.newID(), pos)
	if !ok {
		e.logger.Warn().Str("type", string(t)).Msg("unknown node type")
		return models.Node{}, false
	}
	e.graph.AddNode(node)
	e.state.Selected = node.ID
	e.changed()
	return node, true
}

func (e *Editor) UpdateNodeConfig(nodeID string, partial map[string]any) bool {
	if !e.graph.UpdateNodeConfig(nodeID, partial) {
		return false
	}
	e.changed()
	return true
}

func (e *Editor) MoveNode(nodeID string, p Point) bool {
	if !e.graph.MoveNode(nodeID, p) {
		return false
	}
	e.changed()
	return true
}

// DeleteNode removes the node with its connections. An interaction that targets
// the node is abandoned.
func (e *Editor) DeleteNode(nodeID string) bool {
	if !e.graph.DeleteNode(nodeID) {
		return false
	}
	if e.state.Selected == nodeID {
		e.state.Selected = ""
	}
	switch {
	case e.state.NodeDrag != nil && e.state.NodeDrag.NodeID == nodeID,
		e.state.ConnDrag != nil && e.state.ConnDrag.From.NodeID == nodeID:
		e.state = e.state.idle()
	}
	e.changed()
	return true
}

func (e *Editor) DeleteSelected() bool {
	if e.state.Selected == "" {
		return false
	}
	return e.DeleteNode(e.state.Selected)
}

// Connect validates and adds from → to.
func (e *Editor) Connect(from, to models.PinRef) (models.Connection, Verdict) {
	return e.connect(from, to, CanConnect(e.graph, from, to))
}

// Rewire is Connect for a target that may already have a source; the previous
// connection into to is replaced.
func (e *Editor) Rewire(from, to models.PinRef) (models.Connection, Verdict) {
	return e.connect(from, to, CanReplace(e.graph, from, to))
}

func (e *Editor) connect(from, to models.PinRef, v Verdict) (models.Connection, Verdict) {
	if !v.OK {
		e.logger.Debug().Str("from", from.String()).Str("to", to.String()).
			Str("reason", string(v.Reason)).Msg("connection rejected")
		return models.Connection{}, v
	}
	c := models.Connection{ID: e.newID(), From: from, To: to}
	if old, replaced := e.graph.AddConnection(c); replaced {
		e.logger.Debug().Str("replaced", old.ID).Str("by", c.ID).Msg("connection replaced")
	}
	e.changed()
	return c, v
}

func (e *Editor) DeleteConnection(id string) bool {
	if !e.graph.DeleteConnection(id) {
		return false
	}
	e.changed()
	return true
}

// Select sets the single selection. Unknown ids are ignored.
func (e *Editor) Select(nodeID string) bool {
	if _, ok := e.graph.FindNode(nodeID); !ok {
		return false
	}
	e.state.Selected = nodeID
	return true
}

func (e *Editor) ClearSelection() { e.state.Selected = "" }

// HandlePointer feeds ev through the interaction reducer and applies the
// resulting mutations.
func (e *Editor) HandlePointer(ev PointerEvent) Transition {
	t := Reduce(e.state, e.graph, ev, e.layout)
	e.state = t.State

	mutated := false
	for _, m := range t.Mutations {
		switch m.Kind {
		case MutationMoveNode:
			mutated = e.graph.MoveNode(m.NodeID, m.Position) || mutated
		case MutationDeleteConnection:
			mutated = e.graph.DeleteConnection(m.ConnectionID) || mutated
		case MutationConnect:
			e.graph.AddConnection(models.Connection{ID: e.newID(), From: m.From, To: m.To})
			mutated = true
		}
	}
	if t.Rejected != nil {
		e.logger.Debug().Str("reason", string(t.Rejected.Reason)).Msg("drop rejected")
	}
	if mutated {
		e.changed()
	}
	return t
}

type PinView struct {
	models.Pin
	Center    Point `json:"center"`
	Connected bool  `json:"connected"`
}

type NodeView struct {
	ID       string          `json:"id"`
	Type     models.NodeType `json:"type"`
	Label    string          `json:"label"`
	Bounds   Rect            `json:"bounds"`
	Color    NodeColor       `json:"color"`
	Banner   bool            `json:"banner"`
	Selected bool            `json:"selected"`
	Pins     []PinView       `json:"pins"`
}

type EdgeView struct {
	ID       string        `json:"id"`
	From     models.PinRef `json:"from"`
	To       models.PinRef `json:"to"`
	Curve    Curve         `json:"curve"`
	Path     string        `json:"path"`
	DeleteAt Point         `json:"deleteAt"`
}

// Scene is everything a renderer needs to draw the canvas.
type Scene struct {
	Key     string     `json:"key"`
	Mode    Mode       `json:"mode"`
	Scroll  Point      `json:"scroll"`
	Nodes   []NodeView `json:"nodes"`
	Edges   []EdgeView `json:"edges"`
	Preview *Curve     `json:"preview,omitempty"`
	// Outputs feeds the field picker of response nodes.
	Outputs []OutputCandidate `json:"outputs"`
}

func (e *Editor) Scene() Scene {
	g, l := e.graph, e.layout
	live := g.LiveConnections()
	connected := make(map[models.PinRef]bool, len(live)*2)
	for _, c := range live {
		connected[c.From] = true
		connected[c.To] = true
	}

	scene := Scene{
		Key:     e.key,
		Mode:    e.state.Mode,
		Scroll:  e.state.Scroll,
		Nodes:   make([]NodeView, 0, len(g.nodes)),
		Edges:   make([]EdgeView, 0, len(live)),
		Outputs: g.OutputCandidates(),
	}
	for _, n := range g.nodes {
		banner := g.IsInvalidTerminal(n)
		view := NodeView{
			ID:       n.ID,
			Type:     n.Type,
			Label:    n.Label,
			Bounds:   NodeBounds(g, n, l),
			Color:    g.DisplayColor(n),
			Banner:   banner,
			Selected: n.ID == e.state.Selected,
			Pins:     make([]PinView, 0, len(n.Pins)),
		}
		for i, p := range n.Pins {
			ref := models.PinRef{NodeID: n.ID, PinID: p.ID}
			view.Pins = append(view.Pins, PinView{
				Pin:       p,
				Center:    pinPoint(n, p, i, banner, l),
				Connected: connected[ref],
			})
		}
		scene.Nodes = append(scene.Nodes, view)
	}
	for _, c := range live {
		curve, _ := ConnectionCurve(g, c, l)
		scene.Edges = append(scene.Edges, EdgeView{
			ID:       c.ID,
			From:     c.From,
			To:       c.To,
			Curve:    curve,
			Path:     curve.SVG(),
			DeleteAt: curve.Midpoint(),
		})
	}
	if d := e.state.ConnDrag; d != nil {
		if start, ok := PinPosition(g, d.From, l); ok {
			preview := EdgePath(start, d.Pointer, l.EdgeTension)
			scene.Preview = &preview
		}
	}
	return scene
}
