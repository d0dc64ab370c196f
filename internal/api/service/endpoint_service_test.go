package service

import (
	"testing"

	"flowcore/internal/api/handler/request"
	"flowcore/internal/api/models"
	"flowcore/internal/editor"
	"flowcore/pkg"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEndpointService() (*EndpointService, *fakeEndpointStore) {
	store := newFakeEndpointStore()
	return &EndpointService{
		endpointRepo: store,
		logger:       zerolog.Nop(),
		newID:        seqIDs("id-"),
	}, store
}

func TestEndpoint_CreateSeedsStarterFlow(t *testing.T) {
	svc, _ := newTestEndpointService()

	endpoint, err := svc.Create(request.CreateEndpointDTO{Name: " Users ", Method: "GET", Path: "/users"}, 3)
	require.NoError(t, err)

	assert.Equal(t, uint(1), endpoint.ID)
	assert.Equal(t, "Users", endpoint.Name)
	assert.Equal(t, uint(3), endpoint.CreatorID)
	require.Len(t, endpoint.Flow.Nodes, 2)
	assert.Equal(t, models.NodeTypeStart, endpoint.Flow.Nodes[0].Type)
	assert.Equal(t, models.NodeTypeResponse, endpoint.Flow.Nodes[1].Type)
	require.Len(t, endpoint.Flow.Connections, 1)
	assert.True(t, editor.Audit(endpoint.Flow).Clean())
}

func TestEndpoint_CreateKeepsGivenFlow(t *testing.T) {
	svc, _ := newTestEndpointService()
	node, ok := editor.NewNode(models.NodeTypeDatabase, "db", editor.Point{})
	require.True(t, ok)

	endpoint, err := svc.Create(request.CreateEndpointDTO{
		Name: "q", Method: "POST", Path: "/q",
		Flow: &models.Flow{Nodes: []models.Node{node}},
	}, 1)
	require.NoError(t, err)
	require.Len(t, endpoint.Flow.Nodes, 1)
	assert.Equal(t, "db", endpoint.Flow.Nodes[0].ID)
}

func TestEndpoint_RouteMustBeFree(t *testing.T) {
	svc, _ := newTestEndpointService()
	_, err := svc.Create(request.CreateEndpointDTO{Name: "a", Method: "GET", Path: "/a"}, 1)
	require.NoError(t, err)
	b, err := svc.Create(request.CreateEndpointDTO{Name: "b", Method: "POST", Path: "/a"}, 1)
	require.NoError(t, err)

	_, err = svc.Create(request.CreateEndpointDTO{Name: "dup", Method: "GET", Path: "/a"}, 1)
	assert.ErrorIs(t, err, ErrRouteTaken)

	_, err = svc.Update(b.ID, request.UpdateEndpointDTO{Method: pkg.ToPtr("GET")})
	assert.ErrorIs(t, err, ErrRouteTaken)

	// Keeping its own route is not a conflict.
	updated, err := svc.Update(b.ID, request.UpdateEndpointDTO{Name: pkg.ToPtr("renamed"), Path: pkg.ToPtr("/a")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, models.MethodPost, updated.Method)
}

func TestEndpoint_UpdateWithoutFieldsIsNoop(t *testing.T) {
	svc, _ := newTestEndpointService()
	created, err := svc.Create(request.CreateEndpointDTO{Name: "a", Method: "GET", Path: "/a"}, 1)
	require.NoError(t, err)

	got, err := svc.Update(created.ID, request.UpdateEndpointDTO{})
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}

func TestEndpoint_NotFound(t *testing.T) {
	svc, _ := newTestEndpointService()

	_, err := svc.FindByID(42)
	assert.ErrorIs(t, err, ErrEndpointNotFound)
	_, err = svc.Update(42, request.UpdateEndpointDTO{Name: pkg.ToPtr("x")})
	assert.ErrorIs(t, err, ErrEndpointNotFound)
	assert.ErrorIs(t, svc.Delete(42), ErrEndpointNotFound)
	_, err = svc.LoadFlow(42)
	assert.ErrorIs(t, err, ErrEndpointNotFound)
	_, err = svc.SaveFlow(42, models.Flow{})
	assert.ErrorIs(t, err, ErrEndpointNotFound)
}

func TestEndpoint_SaveFlowPersistsDespiteWarnings(t *testing.T) {
	svc, store := newTestEndpointService()
	created, err := svc.Create(request.CreateEndpointDTO{Name: "a", Method: "GET", Path: "/a"}, 1)
	require.NoError(t, err)

	dangling, ok := editor.NewNode(models.NodeTypeFilter, "f", editor.Point{})
	require.True(t, ok)
	flow := created.Flow.Clone()
	flow.Nodes = append(flow.Nodes, dangling)

	report, err := svc.SaveFlow(created.ID, flow)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(editor.IssueInvalidTerminal))
	assert.Len(t, store.rows[created.ID].Flow.Nodes, 3)
}

func TestEndpoint_SaveFlowNormalizesNilSlices(t *testing.T) {
	svc, store := newTestEndpointService()
	created, err := svc.Create(request.CreateEndpointDTO{Name: "a", Method: "GET", Path: "/a"}, 1)
	require.NoError(t, err)

	_, err = svc.SaveFlow(created.ID, models.Flow{})
	require.NoError(t, err)
	assert.NotNil(t, store.rows[created.ID].Flow.Nodes)
	assert.NotNil(t, store.rows[created.ID].Flow.Connections)
}

func TestEndpoint_Delete(t *testing.T) {
	svc, _ := newTestEndpointService()
	created, err := svc.Create(request.CreateEndpointDTO{Name: "a", Method: "GET", Path: "/a"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(created.ID))
	all, err := svc.FindAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}
