package editor

import (
	"fmt"
	"math"

	"flowcore/internal/api/models"
)

// PinPosition maps ref to the center of its handle. It depends only on the node
// position, the pin index and the node's invalid-terminal banner. A missing node or
// pin yields the zero point and ok == false; renderers skip such pins.
func PinPosition(g *Graph, ref models.PinRef, l Layout) (Point, bool) {
	pin, index, ok := g.FindPin(ref)
	if !ok {
		return Point{}, false
	}
	node, _ := g.FindNode(ref.NodeID)
	return pinPoint(*node, *pin, index, g.IsInvalidTerminal(*node), l), true
}

func pinPoint(node models.Node, pin models.Pin, index int, banner bool, l Layout) Point {
	x := l.OutputPinX()
	if pin.Direction == models.PinInput {
		x = l.InputPinX()
	}
	y := l.FirstPinCenter() + float64(index)*l.PinRowHeight
	if banner {
		y += l.BannerHeight
	}
	return Point{X: node.X + x, Y: node.Y + y}
}

// NodeBounds returns the rectangle a node occupies on the canvas.
func NodeBounds(g *Graph, node models.Node, l Layout) Rect {
	return Rect{
		X:      node.X,
		Y:      node.Y,
		Width:  l.NodeWidth,
		Height: l.NodeHeight(len(node.Pins), g.IsInvalidTerminal(node)),
	}
}

// Curve is a cubic Bézier from Start to End.
type Curve struct {
	Start Point `json:"start"`
	C1    Point `json:"c1"`
	C2    Point `json:"c2"`
	End   Point `json:"end"`
}

// EdgePath builds the curve drawn between two pin points: control points are pushed
// horizontally away from each end by tension.
func EdgePath(p1, p2 Point, tension float64) Curve {
	return Curve{
		Start: p1,
		C1:    Point{X: p1.X + tension, Y: p1.Y},
		C2:    Point{X: p2.X - tension, Y: p2.Y},
		End:   p2,
	}
}

// SVG renders the curve as an SVG path string.
func (c Curve) SVG() string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		c.Start.X, c.Start.Y, c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.End.X, c.End.Y)
}

// Midpoint is the center between the two end points, where the delete handle sits.
func (c Curve) Midpoint() Point {
	return Point{X: (c.Start.X + c.End.X) / 2, Y: (c.Start.Y + c.End.Y) / 2}
}

// At evaluates the curve at t in [0,1].
func (c Curve) At(t float64) Point {
	u := 1 - t
	a, b, cc, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return Point{
		X: a*c.Start.X + b*c.C1.X + cc*c.C2.X + d*c.End.X,
		Y: a*c.Start.Y + b*c.C1.Y + cc*c.C2.Y + d*c.End.Y,
	}
}

// ConnectionCurve returns the curve of a live connection.
func ConnectionCurve(g *Graph, c models.Connection, l Layout) (Curve, bool) {
	from, ok := PinPosition(g, c.From, l)
	if !ok {
		return Curve{}, false
	}
	to, ok := PinPosition(g, c.To, l)
	if !ok {
		return Curve{}, false
	}
	return EdgePath(from, to, l.EdgeTension), true
}

// PlaceNewNode picks the position of a node about to be created. scroll is the
// current viewport offset, so an empty canvas places the node in view.
func PlaceNewNode(g *Graph, selectedID string, scroll Point, l Layout) Point {
	if selectedID != "" {
		if sel, ok := g.FindNode(selectedID); ok {
			return Point{X: sel.X + l.NodeSpacing, Y: sel.Y}
		}
	}
	p := l.Origin.Add(scroll)
	maxX := 0.0
	for _, n := range g.nodes {
		maxX = math.Max(maxX, n.X)
	}
	if maxX > 0 {
		p.X = maxX + l.NodeSpacing
	}
	return p
}

// HitKind classifies what lies under a canvas point.
type HitKind string

const (
	HitCanvas     HitKind = "canvas"
	HitNode       HitKind = "node"
	HitPin        HitKind = "pin"
	HitConnection HitKind = "connection"
)

type Hit struct {
	Kind         HitKind             `json:"kind"`
	NodeID       string              `json:"nodeId,omitempty"`
	Pin          models.PinRef       `json:"pin"`
	Direction    models.PinDirection `json:"direction,omitempty"`
	ConnectionID string              `json:"connectionId,omitempty"`
}

// HitTest resolves p against the scene, topmost first: connection delete handles,
// then pin handles, then node bodies, then the background. Nodes later in the list
// are drawn above earlier ones.
func HitTest(g *Graph, p Point, l Layout) Hit {
	for i := len(g.connections) - 1; i >= 0; i-- {
		c := g.connections[i]
		curve, ok := ConnectionCurve(g, c, l)
		if !ok {
			continue
		}
		if distance(curve.Midpoint(), p) <= l.DeleteHandleRadius {
			return Hit{Kind: HitConnection, ConnectionID: c.ID}
		}
	}

	half := l.PinHandleSize / 2
	for i := len(g.nodes) - 1; i >= 0; i-- {
		node := g.nodes[i]
		bounds := NodeBounds(g, node, l)
		if !bounds.Contains(p) {
			continue
		}
		banner := g.IsInvalidTerminal(node)
		for idx, pin := range node.Pins {
			c := pinPoint(node, pin, idx, banner, l)
			if math.Abs(p.X-c.X) <= half && math.Abs(p.Y-c.Y) <= half {
				return Hit{
					Kind:      HitPin,
					NodeID:    node.ID,
					Pin:       models.PinRef{NodeID: node.ID, PinID: pin.ID},
					Direction: pin.Direction,
				}
			}
		}
		return Hit{Kind: HitNode, NodeID: node.ID}
	}
	return Hit{Kind: HitCanvas}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
