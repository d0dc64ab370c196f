package editor

// Point is a 2-D position in canvas content space (scroll already applied).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Layout holds the pixel metrics of the node skin. The derived offsets
// (FirstPinCenter, InputPinX, OutputPinX) are always computed from these fields,
// so a pin center stays inside the handle the renderer draws.
type Layout struct {
	NodeWidth float64 `json:"nodeWidth"`
	// HeaderHeight covers the title row and its bottom border.
	HeaderHeight  float64 `json:"headerHeight"`
	PinPadding    float64 `json:"pinPadding"`
	PinHandleSize float64 `json:"pinHandleSize"`
	PinRowHeight  float64 `json:"pinRowHeight"`
	// BannerHeight is the height of the invalid-terminal warning strip.
	BannerHeight float64 `json:"bannerHeight"`

	EdgeTension        float64 `json:"edgeTension"`
	DeleteHandleRadius float64 `json:"deleteHandleRadius"`

	NodeSpacing float64 `json:"nodeSpacing"`
	Origin      Point   `json:"origin"`
}

// DefaultLayout matches the stock canvas skin.
func DefaultLayout() Layout {
	return Layout{
		NodeWidth:          280,
		HeaderHeight:       57,
		PinPadding:         8,
		PinHandleSize:      16,
		PinRowHeight:       20,
		BannerHeight:       24,
		EdgeTension:        50,
		DeleteHandleRadius: 12,
		NodeSpacing:        350,
		Origin:             Point{X: 50, Y: 150},
	}
}

// FirstPinCenter is the vertical distance from the node top (below any banner)
// to the center of the first pin handle.
func (l Layout) FirstPinCenter() float64 {
	return l.HeaderHeight + l.PinPadding + l.PinHandleSize/2
}

func (l Layout) InputPinX() float64 {
	return l.PinPadding + l.PinHandleSize/2
}

func (l Layout) OutputPinX() float64 {
	return l.NodeWidth - l.PinPadding - l.PinHandleSize/2
}

// NodeHeight returns the rendered height of a node with pinCount pins.
func (l Layout) NodeHeight(pinCount int, banner bool) float64 {
	h := l.HeaderHeight + 2*l.PinPadding + float64(pinCount)*l.PinRowHeight
	if banner {
		h += l.BannerHeight
	}
	return h
}

// withDefaults fills zero fields from DefaultLayout so partially configured
// layouts stay usable.
func (l Layout) withDefaults() Layout {
	d := DefaultLayout()
	if l.NodeWidth <= 0 {
		l.NodeWidth = d.NodeWidth
	}
	if l.HeaderHeight <= 0 {
		l.HeaderHeight = d.HeaderHeight
	}
	if l.PinPadding <= 0 {
		l.PinPadding = d.PinPadding
	}
	if l.PinHandleSize <= 0 {
		l.PinHandleSize = d.PinHandleSize
	}
	if l.PinRowHeight <= 0 {
		l.PinRowHeight = d.PinRowHeight
	}
	if l.BannerHeight <= 0 {
		l.BannerHeight = d.BannerHeight
	}
	if l.EdgeTension <= 0 {
		l.EdgeTension = d.EdgeTension
	}
	if l.DeleteHandleRadius <= 0 {
		l.DeleteHandleRadius = d.DeleteHandleRadius
	}
	if l.NodeSpacing <= 0 {
		l.NodeSpacing = d.NodeSpacing
	}
	return l
}
