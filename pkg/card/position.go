package card

import "math"

// Rect is an element box in viewport coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func (r Rect) Bottom() float64 { return r.Top + r.Height }
func (r Rect) Right() float64  { return r.Left + r.Width }

// Viewport is the visible area size.
type Viewport struct {
	Width  float64
	Height float64
}

// Layout holds card geometry settings.
type Layout struct {
	Width       float64 // card width
	MaxHeight   float64 // upper bound of the assumed card height
	HeightRatio float64 // assumed card height as a fraction of the viewport height
	Spacing     float64 // gap between anchor and card
	Margin      float64 // minimal distance from the viewport sides
}

// DefaultLayout returns the stock card geometry.
func DefaultLayout() Layout {
	return Layout{
		Width:       580,
		MaxHeight:   500,
		HeightRatio: 0.85,
		Spacing:     10,
		Margin:      10,
	}
}

// Placement is where a card goes. When Above is set the card is anchored by
// its bottom edge (Bottom is the distance from the viewport bottom), otherwise
// by its top edge.
type Placement struct {
	Above  bool
	Top    float64
	Bottom float64
	Left   float64
}

// Height returns the card height assumed for placement decisions.
func (l Layout) Height(vp Viewport) float64 {
	h := l.MaxHeight
	if l.HeightRatio > 0 {
		h = math.Min(h, vp.Height*l.HeightRatio)
	}
	return h
}

// Place computes the card position for an anchor box. The card goes below the
// anchor unless it does not fit there and there is more room above.
// Horizontally it is centered on the anchor and kept Margin away from both
// viewport sides; the left side wins when the viewport is too narrow.
func Place(anchor Rect, vp Viewport, l Layout) Placement {
	var p Placement

	spaceBelow := vp.Height - anchor.Bottom()
	spaceAbove := anchor.Top
	if spaceBelow < l.Height(vp) && spaceAbove > spaceBelow {
		p.Above = true
		p.Bottom = vp.Height - anchor.Top + l.Spacing
	} else {
		p.Top = anchor.Bottom() + l.Spacing
	}

	left := anchor.Left + anchor.Width/2 - l.Width/2
	maxLeft := vp.Width - l.Width - l.Margin
	p.Left = math.Max(l.Margin, math.Min(left, maxLeft))
	return p
}
