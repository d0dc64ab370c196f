package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcore/internal/api/models"
)

type changeLog struct {
	keys  []string
	flows []models.Flow
}

func (c *changeLog) record(key string, flow models.Flow) {
	c.keys = append(c.keys, key)
	c.flows = append(c.flows, flow)
}

func (c *changeLog) last() models.Flow { return c.flows[len(c.flows)-1] }

func newTestEditor() (*Editor, *changeLog) {
	log := &changeLog{}
	e := New(WithIDGenerator(seqIDs("id-")), OnChange(log.record))
	return e, log
}

func assertFlowInvariants(t *testing.T, flow models.Flow) {
	t.Helper()
	g := NewGraph(flow)
	fanIn := map[models.PinRef]int{}
	for _, c := range flow.Connections {
		fanIn[c.To]++
		assert.LessOrEqual(t, fanIn[c.To], 1, "fan-in on %s", c.To)
		assert.NotEqual(t, c.From.NodeID, c.To.NodeID, "self loop %s", c.ID)

		from, _, ok := g.FindPin(c.From)
		require.True(t, ok)
		to, _, ok := g.FindPin(c.To)
		require.True(t, ok)
		assert.True(t, from.Compatible(*to), "%s → %s", from.DataType, to.DataType)
	}
}

func TestEditor_LoadResets(t *testing.T) {
	e, log := newTestEditor()
	e.Load("ep-1", NewFlow(seqIDs("seed-")))
	node, ok := e.AddNode(models.NodeTypeDatabase)
	require.True(t, ok)
	require.True(t, e.Select(node.ID))
	e.HandlePointer(down(2000, 2000))
	require.Equal(t, ModePanning, e.State().Mode)

	e.Load("ep-2", models.Flow{})
	assert.Equal(t, "ep-2", e.Key())
	assert.Equal(t, IdleState(), e.State())
	assert.Empty(t, e.Flow().Nodes)
	assert.Equal(t, []string{"ep-1"}, log.keys)
}

func TestEditor_AddNodePlacement(t *testing.T) {
	e, log := newTestEditor()
	e.Load("k", models.Flow{})

	first, ok := e.AddNode(models.NodeTypeStart)
	require.True(t, ok)
	assert.Equal(t, 50.0, first.X)
	assert.Equal(t, 150.0, first.Y)
	assert.Equal(t, "id-1-out-1", first.Pins[0].ID)
	assert.Equal(t, first.ID, e.Selected())

	second, _ := e.AddNode(models.NodeTypeResponse)
	assert.Equal(t, 400.0, second.X)
	assert.Equal(t, 150.0, second.Y)
	assert.Equal(t, second.ID, e.Selected())

	_, ok = e.AddNode("bogus")
	assert.False(t, ok)
	assert.Len(t, log.flows, 2)
	assert.Len(t, log.last().Nodes, 2)
}

func TestEditor_AddNodeChainsFromSelection(t *testing.T) {
	e, _ := newTestEditor()
	e.Load("k", models.Flow{})

	var xs []float64
	for i := 0; i < 3; i++ {
		n, ok := e.AddNode(models.NodeTypeFilter)
		require.True(t, ok)
		xs = append(xs, n.X)
	}
	assert.Equal(t, []float64{50, 400, 750}, xs)

	// A moved selection drags the next placement along with it.
	first := e.Flow().Nodes[0]
	require.True(t, e.Select(first.ID))
	require.True(t, e.MoveNode(first.ID, Point{X: 50, Y: 500}))
	n, _ := e.AddNode(models.NodeTypeFilter)
	assert.Equal(t, Point{X: 400, Y: 500}, Point{X: n.X, Y: n.Y})
}

func TestEditor_ConnectAndRewire(t *testing.T) {
	e, log := newTestEditor()
	e.Load("k", models.Flow{})
	s1, _ := e.AddNode(models.NodeTypeStart)
	s2, _ := e.AddNode(models.NodeTypeStart)
	r, _ := e.AddNode(models.NodeTypeResponse)

	c1, v := e.Connect(out(s1), in(r))
	require.True(t, v.OK)
	assert.NotEmpty(t, c1.ID)

	_, v = e.Connect(out(s2), in(r))
	assert.Equal(t, ReasonTargetOccupied, v.Reason)
	changes := len(log.flows)

	c2, v := e.Rewire(out(s2), in(r))
	require.True(t, v.OK)
	assert.Equal(t, changes+1, len(log.flows))

	flow := e.Flow()
	require.Len(t, flow.Connections, 1)
	assert.Equal(t, c2.ID, flow.Connections[0].ID)
	assertFlowInvariants(t, flow)
}

func TestEditor_DeleteSelectedClearsSelection(t *testing.T) {
	e, _ := newTestEditor()
	e.Load("k", models.Flow{})
	s, _ := e.AddNode(models.NodeTypeStart)
	d, _ := e.AddNode(models.NodeTypeDatabase)
	e.Connect(out(s), in(d))

	require.True(t, e.Select(d.ID))
	require.True(t, e.DeleteSelected())
	assert.Empty(t, e.Selected())
	assert.Empty(t, e.Flow().Connections)
	assert.False(t, e.DeleteSelected())
	assert.False(t, e.DeleteNode(d.ID))
}

func TestEditor_SelectIsIdempotent(t *testing.T) {
	e, log := newTestEditor()
	e.Load("k", NewFlow(seqIDs("seed-")))
	before := e.Flow()
	changes := len(log.flows)

	id := before.Nodes[0].ID
	assert.True(t, e.Select(id))
	assert.True(t, e.Select(id))
	assert.Equal(t, before, e.Flow())
	assert.Equal(t, changes, len(log.flows))
	assert.False(t, e.Select("missing"))
	assert.Equal(t, id, e.Selected())

	e.ClearSelection()
	assert.Empty(t, e.Selected())
}

func TestEditor_UpdateNodeConfig(t *testing.T) {
	e, log := newTestEditor()
	e.Load("k", models.Flow{})
	d, _ := e.AddNode(models.NodeTypeDatabase)

	require.True(t, e.UpdateNodeConfig(d.ID, map[string]any{"table": "users"}))
	node, _ := e.Graph().FindNode(d.ID)
	assert.Equal(t, "users", node.Config["table"])
	assert.Equal(t, "users", log.last().Nodes[0].Config["table"])
	assert.False(t, e.UpdateNodeConfig("missing", map[string]any{"x": 1}))
}

func TestEditor_PointerDragEmitsChanges(t *testing.T) {
	e, log := newTestEditor()
	e.Load("k", models.Flow{Nodes: []models.Node{mustNode(t, models.NodeTypeStart, "n", 100, 100)}})

	e.HandlePointer(down(120, 120))
	assert.Empty(t, log.flows)
	e.HandlePointer(move(50, 50))
	e.HandlePointer(move(5, 5))
	e.HandlePointer(up(5, 5))

	require.Len(t, log.flows, 2)
	assert.Equal(t, 30.0, log.flows[0].Nodes[0].X)
	assert.Equal(t, 0.0, log.last().Nodes[0].X)
	assert.Equal(t, 0.0, log.last().Nodes[0].Y)
	assert.Equal(t, ModeIdle, e.State().Mode)
}

func TestEditor_PointerConnectAndDelete(t *testing.T) {
	e, log := newTestEditor()
	s := mustNode(t, models.NodeTypeStart, "s", 0, 0)
	d := mustNode(t, models.NodeTypeDatabase, "d", 400, 0)
	e.Load("k", models.Flow{Nodes: []models.Node{s, d}})

	e.HandlePointer(down(264, 73))
	e.HandlePointer(move(400, 90))
	scene := e.Scene()
	require.NotNil(t, scene.Preview)
	assert.Equal(t, Point{X: 264, Y: 73}, scene.Preview.Start)
	assert.Equal(t, Point{X: 400, Y: 90}, scene.Preview.End)

	e.HandlePointer(up(416, 97))
	require.Len(t, e.Flow().Connections, 1)
	assert.Len(t, log.flows, 1)
	assertFlowInvariants(t, e.Flow())

	e.HandlePointer(down(340, 85))
	e.HandlePointer(up(340, 85))
	assert.Empty(t, e.Flow().Connections)
	assert.Len(t, log.flows, 2)
}

func TestEditor_DeleteNodeDuringDragCancels(t *testing.T) {
	e, _ := newTestEditor()
	e.Load("k", models.Flow{Nodes: []models.Node{mustNode(t, models.NodeTypeStart, "n", 100, 100)}})

	e.HandlePointer(down(120, 120))
	require.Equal(t, ModeDraggingNode, e.State().Mode)
	require.True(t, e.DeleteNode("n"))
	assert.Equal(t, ModeIdle, e.State().Mode)
	assert.Nil(t, e.State().NodeDrag)

	tr := e.HandlePointer(move(50, 50))
	assert.Empty(t, tr.Mutations)
}

func TestEditor_Scene(t *testing.T) {
	e, _ := newTestEditor()
	s := mustNode(t, models.NodeTypeStart, "s", 0, 0)
	d := mustNode(t, models.NodeTypeDatabase, "d", 400, 0)
	e.Load("k", models.Flow{
		Nodes: []models.Node{s, d},
		Connections: []models.Connection{
			{ID: "c", From: out(s), To: in(d)},
			{ID: "stale", From: models.PinRef{NodeID: "x", PinID: "y"}, To: in(d)},
		},
	})
	e.Select("d")

	scene := e.Scene()
	assert.Equal(t, "k", scene.Key)
	require.Len(t, scene.Nodes, 2)
	require.Len(t, scene.Edges, 1)
	assert.Nil(t, scene.Preview)

	dv := scene.Nodes[1]
	assert.True(t, dv.Banner)
	assert.True(t, dv.Selected)
	assert.Equal(t, ColorWarning, dv.Color)
	assert.Equal(t, 137.0, dv.Bounds.Height)
	assert.True(t, dv.Pins[0].Connected)
	assert.False(t, dv.Pins[1].Connected)
	assert.Equal(t, Point{X: 416, Y: 97}, dv.Pins[0].Center)

	edge := scene.Edges[0]
	assert.Equal(t, "c", edge.ID)
	assert.Equal(t, Point{X: 340, Y: 85}, edge.DeleteAt)
	assert.Equal(t, "M 264 73 C 314 73, 366 97, 416 97", edge.Path)
}

func TestEditor_WithLayout(t *testing.T) {
	e := New(WithLayout(Layout{NodeWidth: 200}))
	assert.Equal(t, 200.0, e.Layout().NodeWidth)
	assert.Equal(t, 184.0, e.Layout().OutputPinX())
}
