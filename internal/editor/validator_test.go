package editor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcore/internal/api/models"
)

func TestCanConnect_MatchingStringPins(t *testing.T) {
	s := mustNode(t, models.NodeTypeStart, "S", 0, 0)
	d := mustNode(t, models.NodeTypeDatabase, "D", 400, 0)
	g := NewGraph(models.Flow{Nodes: []models.Node{s, d}})

	v := CanConnect(g, out(s), in(d))
	require.True(t, v.OK, v.Message)
	assert.NoError(t, v.Err())

	g.AddConnection(models.Connection{ID: "c", From: out(s), To: in(d)})
	assert.Len(t, g.Connections(), 1)
}

func TestCanConnect_WildcardAcceptsAnyType(t *testing.T) {
	d := mustNode(t, models.NodeTypeDatabase, "D", 0, 0)
	r := mustNode(t, models.NodeTypeResponse, "R", 400, 0)
	g := NewGraph(models.Flow{Nodes: []models.Node{d, r}})

	assert.True(t, CanConnect(g, out(d), in(r)).OK)
}

func TestCanConnect_RejectsIncompatibleTypes(t *testing.T) {
	a := typedNode("a", models.PinOutput, "number")
	b := typedNode("b", models.PinInput, "boolean")
	g := NewGraph(models.Flow{Nodes: []models.Node{a, b}})

	v := CanConnect(g, out(a), in(b))
	assert.False(t, v.OK)
	assert.Equal(t, ReasonIncompatibleTypes, v.Reason)
	assert.NotEmpty(t, v.Message)

	var rejection *RejectionError
	require.True(t, errors.As(v.Err(), &rejection))
	assert.Equal(t, ReasonIncompatibleTypes, rejection.Verdict.Reason)
}

func TestCanConnect_Reasons(t *testing.T) {
	s := mustNode(t, models.NodeTypeStart, "s", 0, 0)
	s2 := mustNode(t, models.NodeTypeStart, "s2", 0, 200)
	d := mustNode(t, models.NodeTypeDatabase, "d", 400, 0)
	r := mustNode(t, models.NodeTypeResponse, "r", 800, 0)
	g := NewGraph(models.Flow{Nodes: []models.Node{s, s2, d, r}})
	g.AddConnection(models.Connection{ID: "c", From: out(s), To: in(r)})

	cases := []struct {
		name   string
		from   models.PinRef
		to     models.PinRef
		reason RejectReason
	}{
		{"missing source", models.PinRef{NodeID: "x", PinID: "y"}, in(d), ReasonPinNotFound},
		{"missing target pin", out(s), models.PinRef{NodeID: "d", PinID: "nope"}, ReasonPinNotFound},
		{"self loop", out(d), in(d), ReasonSelfLoop},
		{"input as source", in(d), in(r), ReasonSourceNotOutput},
		{"output as target", out(s), out(d), ReasonTargetNotInput},
		{"occupied", out(s2), in(r), ReasonTargetOccupied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := CanConnect(g, tc.from, tc.to)
			assert.False(t, v.OK)
			assert.Equal(t, tc.reason, v.Reason)
		})
	}
}

func TestCanConnect_OrderFirstFailureWins(t *testing.T) {
	// a self loop from an input pin to an output pin breaks three rules
	n := models.Node{
		ID:   "n",
		Type: models.NodeTypeProcess,
		Pins: []models.Pin{
			{ID: "i", NodeID: "n", Direction: models.PinInput, DataType: "number"},
			{ID: "o", NodeID: "n", Direction: models.PinOutput, DataType: "boolean"},
		},
	}
	g := NewGraph(models.Flow{Nodes: []models.Node{n}})
	v := CanConnect(g, models.PinRef{NodeID: "n", PinID: "i"}, models.PinRef{NodeID: "n", PinID: "o"})
	assert.Equal(t, ReasonSelfLoop, v.Reason)
}

func TestCanReplace_IgnoresFanIn(t *testing.T) {
	s1 := mustNode(t, models.NodeTypeStart, "s1", 0, 0)
	s2 := mustNode(t, models.NodeTypeStart, "s2", 0, 200)
	r := mustNode(t, models.NodeTypeResponse, "r", 400, 0)
	g := NewGraph(models.Flow{Nodes: []models.Node{s1, s2, r}})
	g.AddConnection(models.Connection{ID: "c", From: out(s1), To: in(r)})

	assert.False(t, CanConnect(g, out(s2), in(r)).OK)
	assert.True(t, CanReplace(g, out(s2), in(r)).OK)
	assert.Equal(t, ReasonSelfLoop, CanReplace(g, in(r), in(r)).Reason)
}
