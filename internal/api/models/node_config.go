package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Per-type views over Node.Config. The graph stores the loose map; forms and the
// execution backend read it through these.

type StartConfig struct {
	Method string   `json:"method" validate:"omitempty,oneof=GET POST PUT DELETE PATCH"`
	Params []string `json:"params"`
}

type DatabaseConfig struct {
	Database  string   `json:"database"`
	Table     string   `json:"table"`
	Operation string   `json:"operation,omitempty" validate:"omitempty,oneof=select insert update delete"`
	Columns   []string `json:"columns"`
}

type FilterConfig struct {
	TransformType string `json:"transformType,omitempty" validate:"omitempty,oneof=map filter reduce sort"`
	Script        string `json:"script"`
}

type ProcessConfig struct {
	ProcessType string `json:"processType,omitempty" validate:"omitempty,oneof=script condition random"`
	Script      string `json:"script"`
}

type ResponseConfig struct {
	StatusCode     string   `json:"statusCode,omitempty"`
	Format         string   `json:"format,omitempty" validate:"omitempty,oneof=json text html"`
	SelectedFields []string `json:"selectedFields"`
}

// DefaultConfig returns the config a freshly created node of type t starts with.
func DefaultConfig(t NodeType) map[string]any {
	switch t {
	case NodeTypeStart:
		return map[string]any{"method": "GET", "params": []any{"param1"}}
	case NodeTypeDatabase:
		return map[string]any{"database": "", "table": "", "columns": []any{}}
	case NodeTypeFilter, NodeTypeProcess:
		return map[string]any{"script": ""}
	case NodeTypeResponse:
		return map[string]any{"selectedFields": []any{}}
	default:
		return map[string]any{}
	}
}

// DecodeConfig converts the loose config map of a node into T.
func DecodeConfig[T any](node Node) (T, error) {
	var result T
	if node.Config == nil {
		return result, errors.New("node config is nil")
	}
	data, err := json.Marshal(node.Config)
	if err != nil {
		return result, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return result, nil
}

// TypedConfig decodes the node config into the schema matching its type.
func (n Node) TypedConfig() (any, error) {
	switch n.Type {
	case NodeTypeStart:
		return DecodeConfig[StartConfig](n)
	case NodeTypeDatabase:
		return DecodeConfig[DatabaseConfig](n)
	case NodeTypeFilter:
		return DecodeConfig[FilterConfig](n)
	case NodeTypeProcess:
		return DecodeConfig[ProcessConfig](n)
	case NodeTypeResponse:
		return DecodeConfig[ResponseConfig](n)
	default:
		return nil, errors.New("unknown node type: " + string(n.Type))
	}
}
