package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcore/internal/api/models"
)

func TestLayout_DerivedOffsets(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, 73.0, l.FirstPinCenter())
	assert.Equal(t, 16.0, l.InputPinX())
	assert.Equal(t, 264.0, l.OutputPinX())
	assert.Equal(t, 93.0, l.NodeHeight(1, false))
	assert.Equal(t, 137.0, l.NodeHeight(2, true))
}

func TestLayout_WithDefaultsFillsZeroFields(t *testing.T) {
	l := Layout{NodeWidth: 300}.withDefaults()
	assert.Equal(t, 300.0, l.NodeWidth)
	assert.Equal(t, DefaultLayout().HeaderHeight, l.HeaderHeight)
	assert.Equal(t, DefaultLayout().NodeSpacing, l.NodeSpacing)
	assert.Equal(t, DefaultLayout().PinPadding, l.PinPadding)
	assert.Equal(t, DefaultLayout().BannerHeight, l.BannerHeight)
	assert.Equal(t, DefaultLayout().EdgeTension, l.EdgeTension)
}

func TestLayout_PartialLayoutKeepsBannerOffset(t *testing.T) {
	l := Layout{NodeWidth: 200}.withDefaults()
	d := mustNode(t, models.NodeTypeDatabase, "d", 0, 0)
	g := NewGraph(models.Flow{Nodes: []models.Node{d}})

	p, ok := PinPosition(g, in(d), l)
	require.True(t, ok)
	assert.Equal(t, l.BannerHeight+l.FirstPinCenter(), p.Y)
	assert.Equal(t, 24.0+73.0, p.Y)
}

func TestPinPosition(t *testing.T) {
	s := mustNode(t, models.NodeTypeStart, "s", 100, 100)
	d := mustNode(t, models.NodeTypeDatabase, "d", 0, 0)
	r := mustNode(t, models.NodeTypeResponse, "r", 600, 0)
	g := NewGraph(models.Flow{Nodes: []models.Node{s, d, r}})
	l := DefaultLayout()

	p, ok := PinPosition(g, out(s), l)
	require.True(t, ok)
	assert.Equal(t, Point{X: 364, Y: 173}, p)

	// d has no consumer yet, so its pins sit below the warning banner
	p, _ = PinPosition(g, in(d), l)
	assert.Equal(t, Point{X: 16, Y: 97}, p)
	p, _ = PinPosition(g, out(d), l)
	assert.Equal(t, Point{X: 264, Y: 117}, p)

	g.AddConnection(models.Connection{ID: "c", From: out(d), To: in(r)})
	p, _ = PinPosition(g, out(d), l)
	assert.Equal(t, Point{X: 264, Y: 93}, p)

	_, ok = PinPosition(g, models.PinRef{NodeID: "s", PinID: "missing"}, l)
	assert.False(t, ok)
}

func TestPinPosition_Pure(t *testing.T) {
	s := mustNode(t, models.NodeTypeStart, "s", 42, 7)
	g := NewGraph(models.Flow{Nodes: []models.Node{s}})
	a, _ := PinPosition(g, out(s), DefaultLayout())
	b, _ := PinPosition(g, out(s), DefaultLayout())
	assert.Equal(t, a, b)
}

func TestNodeBounds(t *testing.T) {
	d := mustNode(t, models.NodeTypeDatabase, "d", 10, 20)
	g := NewGraph(models.Flow{Nodes: []models.Node{d}})
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 280, Height: 137}, NodeBounds(g, d, DefaultLayout()))
}

func TestEdgePath(t *testing.T) {
	c := EdgePath(Point{}, Point{X: 100, Y: 50}, 50)
	assert.Equal(t, Point{X: 50, Y: 0}, c.C1)
	assert.Equal(t, Point{X: 50, Y: 50}, c.C2)
	assert.Equal(t, "M 0 0 C 50 0, 50 50, 100 50", c.SVG())
	assert.Equal(t, Point{X: 50, Y: 25}, c.Midpoint())
	assert.Equal(t, c.Start, c.At(0))
	assert.Equal(t, c.End, c.At(1))
}

func TestPlaceNewNode(t *testing.T) {
	l := DefaultLayout()

	empty := NewGraph(models.Flow{})
	assert.Equal(t, Point{X: 60, Y: 170}, PlaceNewNode(empty, "", Point{X: 10, Y: 20}, l))

	a := mustNode(t, models.NodeTypeStart, "a", 100, 200)
	b := mustNode(t, models.NodeTypeResponse, "b", 400, 300)
	g := NewGraph(models.Flow{Nodes: []models.Node{a, b}})
	assert.Equal(t, Point{X: 750, Y: 150}, PlaceNewNode(g, "", Point{}, l))
	assert.Equal(t, Point{X: 450, Y: 200}, PlaceNewNode(g, "a", Point{}, l))
	assert.Equal(t, Point{X: 750, Y: 150}, PlaceNewNode(g, "gone", Point{}, l))
}

func TestHitTest(t *testing.T) {
	s := mustNode(t, models.NodeTypeStart, "s", 0, 0)
	r := mustNode(t, models.NodeTypeResponse, "r", 400, 0)
	g := NewGraph(models.Flow{Nodes: []models.Node{s, r}})
	l := DefaultLayout()

	hit := HitTest(g, Point{X: 264, Y: 73}, l)
	assert.Equal(t, HitPin, hit.Kind)
	assert.Equal(t, out(s), hit.Pin)
	assert.Equal(t, models.PinOutput, hit.Direction)

	hit = HitTest(g, Point{X: 420, Y: 75}, l)
	assert.Equal(t, HitPin, hit.Kind)
	assert.Equal(t, models.PinInput, hit.Direction)

	hit = HitTest(g, Point{X: 140, Y: 30}, l)
	assert.Equal(t, HitNode, hit.Kind)
	assert.Equal(t, "s", hit.NodeID)

	assert.Equal(t, HitCanvas, HitTest(g, Point{X: 1000, Y: 1000}, l).Kind)

	// the delete handle sits on the curve midpoint, between the two nodes
	g.AddConnection(models.Connection{ID: "c", From: out(s), To: in(r)})
	hit = HitTest(g, Point{X: 340, Y: 73}, l)
	assert.Equal(t, HitConnection, hit.Kind)
	assert.Equal(t, "c", hit.ConnectionID)
}

func TestHitTest_TopmostNodeWins(t *testing.T) {
	a := mustNode(t, models.NodeTypeStart, "a", 0, 0)
	b := mustNode(t, models.NodeTypeStart, "b", 50, 10)
	g := NewGraph(models.Flow{Nodes: []models.Node{a, b}})
	assert.Equal(t, "b", HitTest(g, Point{X: 100, Y: 30}, DefaultLayout()).NodeID)
}
