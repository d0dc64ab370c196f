package editor

import (
	"flowcore/internal/api/models"
)

// NodeColor is the display category of a node.
type NodeColor string

const (
	ColorWarning  NodeColor = "warning"
	ColorEndpoint NodeColor = "endpoint"
	ColorSource   NodeColor = "source"
	ColorCompute  NodeColor = "compute"
	ColorDefault  NodeColor = "default"
)

// Graph is the authoritative node/connection collection of the active flow.
// Lookups never fail loudly: a missing id yields ok == false and mutations on
// missing ids are no-ops.
type Graph struct {
	nodes       []models.Node
	connections []models.Connection
}

// NewGraph builds a graph from a copy of flow; the caller keeps ownership of flow.
func NewGraph(flow models.Flow) *Graph {
	c := flow.Clone()
	return &Graph{nodes: c.Nodes, connections: c.Connections}
}

// Flow returns a deep copy of the current document.
func (g *Graph) Flow() models.Flow {
	return models.Flow{Nodes: g.nodes, Connections: g.connections}.Clone()
}

func (g *Graph) Nodes() []models.Node { return g.nodes }

// Connections returns every stored connection, stale ones included.
func (g *Graph) Connections() []models.Connection { return g.connections }

func (g *Graph) nodeIndex(id string) int {
	for i := range g.nodes {
		if g.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Graph) FindNode(id string) (*models.Node, bool) {
	i := g.nodeIndex(id)
	if i < 0 {
		return nil, false
	}
	return &g.nodes[i], true
}

// FindPin resolves ref to the pin and its index inside the owning node.
func (g *Graph) FindPin(ref models.PinRef) (*models.Pin, int, bool) {
	node, ok := g.FindNode(ref.NodeID)
	if !ok {
		return nil, -1, false
	}
	for i := range node.Pins {
		if node.Pins[i].ID == ref.PinID {
			return &node.Pins[i], i, true
		}
	}
	return nil, -1, false
}

func (g *Graph) FindConnection(id string) (*models.Connection, bool) {
	for i := range g.connections {
		if g.connections[i].ID == id {
			return &g.connections[i], true
		}
	}
	return nil, false
}

// IncidentOutgoing returns the connections leaving nodeID.
func (g *Graph) IncidentOutgoing(nodeID string) []models.Connection {
	var out []models.Connection
	for _, c := range g.connections {
		if c.From.NodeID == nodeID {
			out = append(out, c)
		}
	}
	return out
}

func (g *Graph) hasOutgoing(nodeID string) bool {
	for _, c := range g.connections {
		if c.From.NodeID == nodeID {
			return true
		}
	}
	return false
}

// IncomingTo returns the connection targeting ref, if any.
func (g *Graph) IncomingTo(ref models.PinRef) (models.Connection, bool) {
	for _, c := range g.connections {
		if c.To == ref {
			return c, true
		}
	}
	return models.Connection{}, false
}

// IsInvalidTerminal reports whether node must feed forward but has no outgoing
// connection. It is derived from the current connections on every call.
func (g *Graph) IsInvalidTerminal(node models.Node) bool {
	return node.Type.MustFeedForward() && !g.hasOutgoing(node.ID)
}

func (g *Graph) DisplayColor(node models.Node) NodeColor {
	switch {
	case g.IsInvalidTerminal(node):
		return ColorWarning
	case node.Type == models.NodeTypeStart || node.Type == models.NodeTypeResponse:
		return ColorEndpoint
	case node.Type == models.NodeTypeDatabase:
		return ColorSource
	case node.Type == models.NodeTypeProcess:
		return ColorCompute
	default:
		return ColorDefault
	}
}

// connectionLive reports whether both endpoints of c still resolve.
func (g *Graph) connectionLive(c models.Connection) bool {
	_, _, fromOK := g.FindPin(c.From)
	_, _, toOK := g.FindPin(c.To)
	return fromOK && toOK
}

// LiveConnections filters out tombstoned connections whose pins no longer exist.
func (g *Graph) LiveConnections() []models.Connection {
	out := make([]models.Connection, 0, len(g.connections))
	for _, c := range g.connections {
		if g.connectionLive(c) {
			out = append(out, c)
		}
	}
	return out
}

// OutputCandidate is an output pin a response node may pick fields from.
type OutputCandidate struct {
	NodeID    string     `json:"nodeId"`
	NodeLabel string     `json:"nodeLabel"`
	Pin       models.Pin `json:"pin"`
}

// OutputCandidates lists the output pins of every non-response node.
func (g *Graph) OutputCandidates() []OutputCandidate {
	var out []OutputCandidate
	for _, n := range g.nodes {
		if n.Type == models.NodeTypeResponse {
			continue
		}
		for _, p := range n.Pins {
			if p.Direction == models.PinOutput {
				out = append(out, OutputCandidate{NodeID: n.ID, NodeLabel: n.Label, Pin: p})
			}
		}
	}
	return out
}

// Mutations

func (g *Graph) AddNode(node models.Node) {
	g.nodes = append(g.nodes, node.Clone())
}

// UpdateNodeConfig shallow-merges partial into the node config.
func (g *Graph) UpdateNodeConfig(nodeID string, partial map[string]any) bool {
	node, ok := g.FindNode(nodeID)
	if !ok {
		return false
	}
	if node.Config == nil {
		node.Config = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		node.Config[k] = v
	}
	return true
}

func (g *Graph) MoveNode(nodeID string, p Point) bool {
	node, ok := g.FindNode(nodeID)
	if !ok {
		return false
	}
	node.X, node.Y = p.X, p.Y
	return true
}

// DeleteNode removes the node and every connection touching it.
func (g *Graph) DeleteNode(nodeID string) bool {
	i := g.nodeIndex(nodeID)
	if i < 0 {
		return false
	}
	g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)

	kept := g.connections[:0]
	for _, c := range g.connections {
		if c.From.NodeID != nodeID && c.To.NodeID != nodeID {
			kept = append(kept, c)
		}
	}
	g.connections = kept
	return true
}

// AddConnection upserts by target pin: any connection already entering c.To is
// replaced. The replaced connection is returned when there was one.
func (g *Graph) AddConnection(c models.Connection) (models.Connection, bool) {
	var replaced models.Connection
	var didReplace bool
	kept := g.connections[:0]
	for _, existing := range g.connections {
		if existing.To == c.To {
			replaced, didReplace = existing, true
			continue
		}
		kept = append(kept, existing)
	}
	g.connections = append(kept, c)
	return replaced, didReplace
}

func (g *Graph) DeleteConnection(id string) bool {
	for i := range g.connections {
		if g.connections[i].ID == id {
			g.connections = append(g.connections[:i], g.connections[i+1:]...)
			return true
		}
	}
	return false
}
