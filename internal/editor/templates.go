package editor

import (
	"strconv"

	"flowcore/internal/api/models"
)

// PinTemplate describes one default pin of a node type.
type PinTemplate struct {
	Direction models.PinDirection `json:"direction"`
	DataType  string              `json:"dataType"`
	Label     string              `json:"label"`
}

// NodeTemplate is the fixed default shape of a node type.
type NodeTemplate struct {
	Type   models.NodeType `json:"type"`
	Label  string          `json:"label"`
	Pins   []PinTemplate   `json:"pins"`
	Config map[string]any  `json:"config"`
}

var templates = map[models.NodeType]NodeTemplate{
	models.NodeTypeStart: {
		Type:  models.NodeTypeStart,
		Label: "Request",
		Pins: []PinTemplate{
			{Direction: models.PinOutput, DataType: "string", Label: "param1"},
		},
	},
	models.NodeTypeDatabase: {
		Type:  models.NodeTypeDatabase,
		Label: "Database Query",
		Pins: []PinTemplate{
			{Direction: models.PinInput, DataType: "string", Label: "condition"},
			{Direction: models.PinOutput, DataType: "string", Label: "result"},
		},
	},
	models.NodeTypeFilter: {
		Type:  models.NodeTypeFilter,
		Label: "Transform",
		Pins: []PinTemplate{
			{Direction: models.PinInput, DataType: models.AnyDataType, Label: "input"},
			{Direction: models.PinOutput, DataType: models.AnyDataType, Label: "output"},
		},
	},
	models.NodeTypeProcess: {
		Type:  models.NodeTypeProcess,
		Label: "Process",
		Pins: []PinTemplate{
			{Direction: models.PinInput, DataType: models.AnyDataType, Label: "input"},
			{Direction: models.PinOutput, DataType: models.AnyDataType, Label: "output"},
		},
	},
	models.NodeTypeResponse: {
		Type:  models.NodeTypeResponse,
		Label: "Response",
		Pins: []PinTemplate{
			{Direction: models.PinInput, DataType: models.AnyDataType, Label: "data"},
		},
	},
}

// Template returns the default shape of t with a fresh config map.
func Template(t models.NodeType) (NodeTemplate, bool) {
	tpl, ok := templates[t]
	if !ok {
		return NodeTemplate{}, false
	}
	tpl.Config = models.DefaultConfig(t)
	return tpl, true
}

// Templates returns every template in menu order.
func Templates() []NodeTemplate {
	out := make([]NodeTemplate, 0, len(models.NodeTypes))
	for _, t := range models.NodeTypes {
		tpl, _ := Template(t)
		out = append(out, tpl)
	}
	return out
}

// NewNode instantiates the template of t at position p. Pin ids are derived from
// the node id ("<id>-in-1", "<id>-out-1", ...).
func NewNode(t models.NodeType, id string, p Point) (models.Node, bool) {
	tpl, ok := Template(t)
	if !ok {
		return models.Node{}, false
	}
	node := models.Node{
		ID:     id,
		Type:   t,
		Label:  tpl.Label,
		X:      p.X,
		Y:      p.Y,
		Config: tpl.Config,
		Pins:   make([]models.Pin, 0, len(tpl.Pins)),
	}
	var in, out int
	for _, pt := range tpl.Pins {
		var pinID string
		if pt.Direction == models.PinInput {
			in++
			pinID = pinName(id, "in", in)
		} else {
			out++
			pinID = pinName(id, "out", out)
		}
		node.Pins = append(node.Pins, models.Pin{
			ID:        pinID,
			NodeID:    id,
			Direction: pt.Direction,
			DataType:  pt.DataType,
			Label:     pt.Label,
		})
	}
	return node, true
}

func pinName(nodeID, dir string, n int) string {
	return nodeID + "-" + dir + "-" + strconv.Itoa(n)
}

// NewFlow returns the starter document of a new endpoint: a request node wired to
// a response node.
func NewFlow(newID func() string) models.Flow {
	l := DefaultLayout()
	start, _ := NewNode(models.NodeTypeStart, newID(), l.Origin)
	resp, _ := NewNode(models.NodeTypeResponse, newID(), Point{X: l.Origin.X + l.NodeSpacing, Y: l.Origin.Y})
	return models.Flow{
		Nodes: []models.Node{start, resp},
		Connections: []models.Connection{{
			ID:   newID(),
			From: models.PinRef{NodeID: start.ID, PinID: start.Pins[0].ID},
			To:   models.PinRef{NodeID: resp.ID, PinID: resp.Pins[0].ID},
		}},
	}
}
