package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFlow() Flow {
	return Flow{
		Nodes: []Node{
			{
				ID: "s", Type: NodeTypeStart, Label: "API Endpoint", X: 50, Y: 150,
				Config: map[string]any{"method": "GET", "params": []any{"id"}},
				Pins:   []Pin{{ID: "s-out", NodeID: "s", Direction: PinOutput, DataType: "string", Label: "id"}},
			},
			{
				ID: "r", Type: NodeTypeResponse, Label: "Response", X: 400, Y: 150,
				Config: map[string]any{"selectedFields": []string{"id"}, "headers": map[string]any{"x": "y"}},
				Pins:   []Pin{{ID: "r-in", NodeID: "r", Direction: PinInput, DataType: AnyDataType, Label: "data"}},
			},
		},
		Connections: []Connection{{ID: "c", From: PinRef{NodeID: "s", PinID: "s-out"}, To: PinRef{NodeID: "r", PinID: "r-in"}}},
	}
}

func TestFlow_ValueNormalizesNilSlices(t *testing.T) {
	v, err := Flow{}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"connections":[]}`, string(v.([]byte)))
}

func TestFlow_ScanRoundTrip(t *testing.T) {
	v, err := sampleFlow().Value()
	require.NoError(t, err)
	raw := v.([]byte)

	var fromBytes Flow
	require.NoError(t, fromBytes.Scan(raw))
	var fromString Flow
	require.NoError(t, fromString.Scan(string(raw)))

	assert.Equal(t, fromBytes, fromString)
	require.Len(t, fromBytes.Nodes, 2)
	assert.Equal(t, "GET", fromBytes.Nodes[0].Config["method"])
	assert.Equal(t, PinOutput, fromBytes.Nodes[0].Pins[0].Direction)
	assert.Equal(t, sampleFlow().Connections, fromBytes.Connections)
}

func TestFlow_ScanEmpty(t *testing.T) {
	f := sampleFlow()
	require.NoError(t, f.Scan(nil))
	assert.Equal(t, Flow{}, f)

	f = sampleFlow()
	require.NoError(t, f.Scan([]byte{}))
	assert.Equal(t, Flow{}, f)
}

func TestFlow_ScanRejectsBadInput(t *testing.T) {
	var f Flow
	err := f.Scan(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "int")

	assert.Error(t, f.Scan(`{"nodes":`))
}

func TestFlow_CloneIsIndependent(t *testing.T) {
	orig := sampleFlow()
	c := orig.Clone()
	require.Equal(t, orig, c)

	c.Nodes[0].Config["method"] = "POST"
	c.Nodes[0].Config["params"].([]any)[0] = "slug"
	c.Nodes[1].Config["selectedFields"].([]string)[0] = "name"
	c.Nodes[1].Config["headers"].(map[string]any)["x"] = "z"
	c.Nodes[0].Pins[0].Label = "slug"
	c.Connections[0].ID = "c2"

	assert.Equal(t, sampleFlow(), orig)
}

func TestPin_Compatible(t *testing.T) {
	str := Pin{DataType: "string"}
	num := Pin{DataType: "number"}
	wild := Pin{DataType: AnyDataType}

	assert.True(t, str.Compatible(str))
	assert.True(t, str.Compatible(wild))
	assert.True(t, wild.Compatible(num))
	assert.False(t, str.Compatible(num))
}

func TestNodeType_Rules(t *testing.T) {
	for _, typ := range NodeTypes {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, NodeType("loop").Valid())

	assert.True(t, NodeTypeDatabase.MustFeedForward())
	assert.True(t, NodeTypeFilter.MustFeedForward())
	assert.True(t, NodeTypeProcess.MustFeedForward())
	assert.False(t, NodeTypeStart.MustFeedForward())
	assert.False(t, NodeTypeResponse.MustFeedForward())
}
