package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type NodeType string

const (
	NodeTypeStart    NodeType = "start"
	NodeTypeDatabase NodeType = "database"
	NodeTypeFilter   NodeType = "filter"
	NodeTypeResponse NodeType = "response"
	NodeTypeProcess  NodeType = "process"
)

// NodeTypes lists every node type in menu order.
var NodeTypes = []NodeType{
	NodeTypeStart,
	NodeTypeDatabase,
	NodeTypeProcess,
	NodeTypeFilter,
	NodeTypeResponse,
}

func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeStart, NodeTypeDatabase, NodeTypeFilter, NodeTypeResponse, NodeTypeProcess:
		return true
	}
	return false
}

// MustFeedForward reports whether a node of this type needs a downstream consumer.
func (t NodeType) MustFeedForward() bool {
	return t == NodeTypeDatabase || t == NodeTypeFilter || t == NodeTypeProcess
}

type PinDirection string

const (
	PinInput  PinDirection = "input"
	PinOutput PinDirection = "output"
)

// AnyDataType is the wildcard data type, compatible with every other tag.
const AnyDataType = "any"

// Flow is the persisted graph document of one endpoint.
type Flow struct {
	Nodes       []Node       `json:"nodes" validate:"dive"`
	Connections []Connection `json:"connections" validate:"dive"`
}

type Node struct {
	ID    string   `json:"id" validate:"required"`
	Type  NodeType `json:"type" validate:"required,oneof=start database filter response process"`
	Label string   `json:"label" validate:"required"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	// Config is owned by the per-type editors; the graph only merges into it.
	Config map[string]any `json:"config"`
	Pins   []Pin          `json:"pins" validate:"dive"`
}

type Pin struct {
	ID        string       `json:"id" validate:"required"`
	NodeID    string       `json:"node_id" validate:"required"`
	Direction PinDirection `json:"type" validate:"required,oneof=input output"`
	DataType  string       `json:"data_type" validate:"required"`
	Label     string       `json:"label"`
}

// Compatible reports whether data can flow between two pins' data types.
func (p Pin) Compatible(other Pin) bool {
	return p.DataType == AnyDataType || other.DataType == AnyDataType || p.DataType == other.DataType
}

type Connection struct {
	ID   string `json:"id" validate:"required"`
	From PinRef `json:"from"`
	To   PinRef `json:"to"`
}

type PinRef struct {
	NodeID string `json:"node_id" validate:"required"`
	PinID  string `json:"pin_id" validate:"required"`
}

func (r PinRef) String() string {
	return r.NodeID + "/" + r.PinID
}

// Clone returns a deep copy. Config values are copied one level deep, matching the
// shallow merge semantics of config updates.
func (f Flow) Clone() Flow {
	out := Flow{
		Nodes:       make([]Node, len(f.Nodes)),
		Connections: make([]Connection, len(f.Connections)),
	}
	for i, n := range f.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Connections, f.Connections)
	return out
}

func (n Node) Clone() Node {
	out := n
	out.Pins = make([]Pin, len(n.Pins))
	copy(out.Pins, n.Pins)
	out.Config = make(map[string]any, len(n.Config))
	for k, v := range n.Config {
		out.Config[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		c := make([]any, len(t))
		copy(c, t)
		return c
	case []string:
		c := make([]string, len(t))
		copy(c, t)
		return c
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, inner := range t {
			c[k] = inner
		}
		return c
	default:
		return v
	}
}

// Scan implements sql.Scanner so a Flow can live in a jsonb column.
func (f *Flow) Scan(value interface{}) error {
	if value == nil {
		*f = Flow{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan type %T into Flow", value)
	}
	if len(data) == 0 {
		*f = Flow{}
		return nil
	}
	if err := json.Unmarshal(data, f); err != nil {
		return fmt.Errorf("failed to unmarshal flow: %w", err)
	}
	return nil
}

// Value implements driver.Valuer.
func (f Flow) Value() (driver.Value, error) {
	if f.Nodes == nil {
		f.Nodes = []Node{}
	}
	if f.Connections == nil {
		f.Connections = []Connection{}
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flow: %w", err)
	}
	return data, nil
}
