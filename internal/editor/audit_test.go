package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flowcore/internal/api/models"
)

func TestAudit_CleanFlow(t *testing.T) {
	s := mustNode(t, models.NodeTypeStart, "s", 0, 0)
	d := mustNode(t, models.NodeTypeDatabase, "d", 400, 0)
	r := mustNode(t, models.NodeTypeResponse, "r", 800, 0)
	flow := models.Flow{
		Nodes: []models.Node{s, d, r},
		Connections: []models.Connection{
			{ID: "c1", From: out(s), To: in(d)},
			{ID: "c2", From: out(d), To: in(r)},
		},
	}
	report := Audit(flow)
	assert.True(t, report.Clean(), "%+v", report.Issues)
}

func TestAudit_ReportsEveryProblem(t *testing.T) {
	s1 := mustNode(t, models.NodeTypeStart, "s1", 0, 0)
	s2 := mustNode(t, models.NodeTypeStart, "s2", 0, 200)
	d := mustNode(t, models.NodeTypeDatabase, "d", 400, 0)
	r := mustNode(t, models.NodeTypeResponse, "r", 800, 0)
	num := typedNode("num", models.PinOutput, "number")
	flag := typedNode("flag", models.PinInput, "boolean")
	odd := models.Node{ID: "odd", Type: "webhook", Label: "Odd"}

	flow := models.Flow{
		Nodes: []models.Node{s1, s2, d, r, num, flag, odd, s1},
		Connections: []models.Connection{
			{ID: "fan1", From: out(s1), To: in(r)},
			{ID: "fan2", From: out(s2), To: in(r)},
			{ID: "types", From: out(num), To: in(flag)},
			{ID: "dir", From: in(d), To: in(r)},
			{ID: "loop", From: out(d), To: in(d)},
			{ID: "gone", From: models.PinRef{NodeID: "x", PinID: "y"}, To: in(d)},
		},
	}
	report := Audit(flow)

	assert.False(t, report.Clean())
	assert.Equal(t, 1, report.Count(IssueDuplicateID))
	assert.Equal(t, 1, report.Count(IssueUnknownNodeType))
	assert.Equal(t, 1, report.Count(IssueIncompatibleTypes))
	assert.Equal(t, 1, report.Count(IssueDirection))
	assert.Equal(t, 1, report.Count(IssueSelfLoop))
	assert.Equal(t, 1, report.Count(IssueDanglingEdge))
	assert.Equal(t, 1, report.Count(IssueFanIn))
	// flag only consumes; d counts its self loop as an outgoing edge
	assert.Equal(t, 1, report.Count(IssueInvalidTerminal))
}

func TestAudit_InvalidTerminalIsWarning(t *testing.T) {
	d := mustNode(t, models.NodeTypeDatabase, "d", 0, 0)
	report := Audit(models.Flow{Nodes: []models.Node{d}})
	assert.Equal(t, 1, report.Count(IssueInvalidTerminal))
	assert.Equal(t, "d", report.Issues[0].NodeID)
}
