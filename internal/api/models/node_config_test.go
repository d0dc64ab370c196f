package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfig_PerType(t *testing.T) {
	tests := []struct {
		name   string
		node   Node
		expect any
	}{
		{
			name:   "start",
			node:   Node{Type: NodeTypeStart, Config: map[string]any{"method": "POST", "params": []any{"id", "slug"}}},
			expect: StartConfig{Method: "POST", Params: []string{"id", "slug"}},
		},
		{
			name:   "database",
			node:   Node{Type: NodeTypeDatabase, Config: map[string]any{"database": "main", "table": "users", "operation": "select", "columns": []string{"id"}}},
			expect: DatabaseConfig{Database: "main", Table: "users", Operation: "select", Columns: []string{"id"}},
		},
		{
			name:   "filter",
			node:   Node{Type: NodeTypeFilter, Config: map[string]any{"transformType": "map", "script": "x"}},
			expect: FilterConfig{TransformType: "map", Script: "x"},
		},
		{
			name:   "process",
			node:   Node{Type: NodeTypeProcess, Config: map[string]any{"processType": "random"}},
			expect: ProcessConfig{ProcessType: "random"},
		},
		{
			name:   "response",
			node:   Node{Type: NodeTypeResponse, Config: map[string]any{"statusCode": "200", "format": "json", "selectedFields": []any{"id"}}},
			expect: ResponseConfig{StatusCode: "200", Format: "json", SelectedFields: []string{"id"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.node.TypedConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestDecodeConfig_Errors(t *testing.T) {
	_, err := DecodeConfig[StartConfig](Node{Type: NodeTypeStart})
	assert.Error(t, err)

	_, err = DecodeConfig[StartConfig](Node{Type: NodeTypeStart, Config: map[string]any{"params": "id"}})
	assert.Error(t, err)

	_, err = Node{Type: "loop", Config: map[string]any{}}.TypedConfig()
	assert.Error(t, err)
}

func TestDefaultConfig_DecodesForEveryType(t *testing.T) {
	for _, typ := range NodeTypes {
		node := Node{Type: typ, Config: DefaultConfig(typ)}
		_, err := node.TypedConfig()
		assert.NoError(t, err, typ)
	}

	start, err := DecodeConfig[StartConfig](Node{Config: DefaultConfig(NodeTypeStart)})
	require.NoError(t, err)
	assert.Equal(t, StartConfig{Method: "GET", Params: []string{"param1"}}, start)
	assert.Empty(t, DefaultConfig("loop"))
}
