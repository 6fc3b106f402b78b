// Package viewport maps between screen pixels and canvas coordinates.
//
// The transform is screen = canvas*zoom + (x, y). Zooming keeps a chosen screen
// point fixed, so the canvas location under the cursor does not move.
package viewport

import "github.com/aretw0/flowcanvas/pkg/domain"

const (
	MinZoom = 0.2
	MaxZoom = 2.0

	// WheelSensitivity converts wheel delta units into zoom delta.
	WheelSensitivity = 0.001
)

// Viewport is the pan/zoom state of one canvas. The zero value is not usable; call New.
type Viewport struct {
	X    float64
	Y    float64
	Zoom float64
}

// New returns an identity viewport.
func New() *Viewport {
	return &Viewport{Zoom: 1}
}

// FromState restores a persisted viewport, clamping the zoom into range.
func FromState(s domain.ViewportState) *Viewport {
	z := s.Zoom
	if z == 0 {
		z = 1
	}
	return &Viewport{X: s.X, Y: s.Y, Zoom: clamp(z, MinZoom, MaxZoom)}
}

// State returns the persistable form of the viewport.
func (v *Viewport) State() domain.ViewportState {
	return domain.ViewportState{X: v.X, Y: v.Y, Zoom: v.Zoom}
}

// ToCanvas converts a screen point to canvas coordinates.
func (v *Viewport) ToCanvas(p domain.Point) domain.Point {
	return domain.Point{
		X: (p.X - v.X) / v.Zoom,
		Y: (p.Y - v.Y) / v.Zoom,
	}
}

// ToScreen converts a canvas point to screen coordinates.
func (v *Viewport) ToScreen(p domain.Point) domain.Point {
	return domain.Point{
		X: p.X*v.Zoom + v.X,
		Y: p.Y*v.Zoom + v.Y,
	}
}

// Pan translates the view by a screen-space delta. Zoom is unaffected.
func (v *Viewport) Pan(d domain.Point) {
	v.X += d.X
	v.Y += d.Y
}

// ZoomAt changes the zoom by delta, clamped to [MinZoom, MaxZoom], keeping the
// canvas point under screen point p fixed.
func (v *Viewport) ZoomAt(p domain.Point, delta float64) {
	anchor := v.ToCanvas(p)
	v.Zoom = clamp(v.Zoom+delta, MinZoom, MaxZoom)
	v.X = p.X - anchor.X*v.Zoom
	v.Y = p.Y - anchor.Y*v.Zoom
}

// Wheel zooms at the cursor for a wheel event. Scrolling up (negative deltaY) zooms in.
func (v *Viewport) Wheel(cursor domain.Point, deltaY float64) {
	v.ZoomAt(cursor, -deltaY*WheelSensitivity)
}

// Reset returns to the identity transform.
func (v *Viewport) Reset() {
	v.X, v.Y, v.Zoom = 0, 0, 1
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
