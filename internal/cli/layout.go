package cli

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"flowcore/internal/editor"
)

// layoutFile mirrors the [canvas] table of a layout file. Unset keys keep the
// stock metrics.
type layoutFile struct {
	Canvas struct {
		NodeWidth          *float64 `toml:"node_width"`
		HeaderHeight       *float64 `toml:"header_height"`
		PinPadding         *float64 `toml:"pin_padding"`
		PinHandleSize      *float64 `toml:"pin_handle_size"`
		PinRowHeight       *float64 `toml:"pin_row_height"`
		BannerHeight       *float64 `toml:"banner_height"`
		EdgeTension        *float64 `toml:"edge_tension"`
		DeleteHandleRadius *float64 `toml:"delete_handle_radius"`
		NodeSpacing        *float64 `toml:"node_spacing"`
		Origin             *struct {
			X float64 `toml:"x"`
			Y float64 `toml:"y"`
		} `toml:"origin"`
	} `toml:"canvas"`
}

// LoadLayout reads a TOML layout file. Unknown keys are rejected so a typo does
// not silently fall back to the default.
func LoadLayout(path string) (editor.Layout, error) {
	var f layoutFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return editor.Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return editor.Layout{}, fmt.Errorf("layout %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return f.apply(editor.DefaultLayout()), nil
}

func (f layoutFile) apply(l editor.Layout) editor.Layout {
	c := f.Canvas
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&l.NodeWidth, c.NodeWidth)
	set(&l.HeaderHeight, c.HeaderHeight)
	set(&l.PinPadding, c.PinPadding)
	set(&l.PinHandleSize, c.PinHandleSize)
	set(&l.PinRowHeight, c.PinRowHeight)
	set(&l.BannerHeight, c.BannerHeight)
	set(&l.EdgeTension, c.EdgeTension)
	set(&l.DeleteHandleRadius, c.DeleteHandleRadius)
	set(&l.NodeSpacing, c.NodeSpacing)
	if c.Origin != nil {
		l.Origin = editor.Point{X: c.Origin.X, Y: c.Origin.Y}
	}
	return l
}
