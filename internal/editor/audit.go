package editor

import (
	"fmt"

	"flowcore/internal/api/models"
)

type IssueKind string

const (
	IssueInvalidTerminal   IssueKind = "invalid_terminal"
	IssueDanglingEdge      IssueKind = "dangling_connection"
	IssueFanIn             IssueKind = "fan_in"
	IssueSelfLoop          IssueKind = "self_loop"
	IssueDirection         IssueKind = "direction"
	IssueIncompatibleTypes IssueKind = "incompatible_types"
	IssueUnknownNodeType   IssueKind = "unknown_node_type"
	IssueDuplicateID       IssueKind = "duplicate_id"
)

type Issue struct {
	Kind         IssueKind `json:"kind"`
	NodeID       string    `json:"nodeId,omitempty"`
	ConnectionID string    `json:"connectionId,omitempty"`
	Message      string    `json:"message"`
}

// Report lists what is wrong with a document. Warnings never block saving.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Clean reports whether no issue at all was found.
func (r Report) Clean() bool { return len(r.Issues) == 0 }

func (r Report) Count(kind IssueKind) int {
	n := 0
	for _, i := range r.Issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Report) add(kind IssueKind, nodeID, connID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Kind:         kind,
		NodeID:       nodeID,
		ConnectionID: connID,
		Message:      fmt.Sprintf(format, args...),
	})
}

// Audit checks flow against the graph invariants: one source per input pin, no
// self loops, output to input direction, compatible data types and feed-forward
// nodes with a consumer. Documents written by other clients are not trusted.
func Audit(flow models.Flow) Report {
	g := NewGraph(flow)
	report := Report{Issues: []Issue{}}

	seen := make(map[string]bool, len(g.nodes))
	for _, n := range g.nodes {
		if seen[n.ID] {
			report.add(IssueDuplicateID, n.ID, "", "node id %q is used more than once", n.ID)
		}
		seen[n.ID] = true
		if !n.Type.Valid() {
			report.add(IssueUnknownNodeType, n.ID, "", "node %q has unknown type %q", n.Label, n.Type)
		}
	}

	fanIn := make(map[models.PinRef]int)
	for _, c := range g.connections {
		fromPin, _, fromOK := g.FindPin(c.From)
		toPin, _, toOK := g.FindPin(c.To)
		if !fromOK || !toOK {
			report.add(IssueDanglingEdge, "", c.ID, "connection %s → %s references a missing pin", c.From, c.To)
			continue
		}
		if c.From.NodeID == c.To.NodeID {
			report.add(IssueSelfLoop, c.From.NodeID, c.ID, "connection loops back into its own node")
		}
		if fromPin.Direction != models.PinOutput || toPin.Direction != models.PinInput {
			report.add(IssueDirection, "", c.ID, "connection must run from an output pin to an input pin")
		}
		if !fromPin.Compatible(*toPin) {
			report.add(IssueIncompatibleTypes, "", c.ID, "%s → %s is incompatible", fromPin.DataType, toPin.DataType)
		}
		fanIn[c.To]++
		if fanIn[c.To] == 2 {
			report.add(IssueFanIn, c.To.NodeID, c.ID, "input pin %s has more than one incoming connection", c.To)
		}
	}

	for _, n := range g.nodes {
		if g.IsInvalidTerminal(n) {
			report.add(IssueInvalidTerminal, n.ID, "", "%s node %q has no outgoing connection", n.Type, n.Label)
		}
	}
	return report
}
