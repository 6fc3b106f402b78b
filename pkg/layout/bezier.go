package layout

import (
	"fmt"
	"math"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

// MinCurveOffset is the smallest horizontal pull of an edge control point.
const MinCurveOffset = 50.0

// Bezier is a cubic curve from Start to End.
type Bezier struct {
	Start domain.Point
	C1    domain.Point
	C2    domain.Point
	End   domain.Point
}

// EdgeCurve returns the curve drawn between an output anchor and an input anchor.
// Control points pull horizontally so that wires leave outputs to the right and
// enter inputs from the left.
func EdgeCurve(start, end domain.Point) Bezier {
	off := math.Max(math.Abs(end.X-start.X)*0.5, MinCurveOffset)
	return Bezier{
		Start: start,
		C1:    domain.Point{X: start.X + off, Y: start.Y},
		C2:    domain.Point{X: end.X - off, Y: end.Y},
		End:   end,
	}
}

// At evaluates the curve at t in [0, 1].
func (b Bezier) At(t float64) domain.Point {
	u := 1 - t
	w0 := u * u * u
	w1 := 3 * u * u * t
	w2 := 3 * u * t * t
	w3 := t * t * t
	return domain.Point{
		X: w0*b.Start.X + w1*b.C1.X + w2*b.C2.X + w3*b.End.X,
		Y: w0*b.Start.Y + w1*b.C1.Y + w2*b.C2.Y + w3*b.End.Y,
	}
}

// SVGPath renders the curve as an SVG path command.
func (b Bezier) SVGPath() string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		b.Start.X, b.Start.Y, b.C1.X, b.C1.Y, b.C2.X, b.C2.Y, b.End.X, b.End.Y)
}
