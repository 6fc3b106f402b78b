package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/graph"
)

func setup(t *testing.T) (*graph.Graph, *Layout) {
	t.Helper()
	g := graph.New(catalog.Builtin())
	require.NoError(t, g.AddNodeWithID("join", catalog.TypeJoin, domain.Point{X: 100, Y: 100}, nil))
	return g, New(g)
}

func TestBoxAndAnchors(t *testing.T) {
	_, l := setup(t)

	box, ok := l.NodeBox("join")
	require.True(t, ok)
	assert.Equal(t, domain.Point{X: 100, Y: 100}, box.Min)
	assert.Equal(t, domain.Point{X: 320, Y: 100 + HeaderHeight + 2*RowHeight + 2*Padding}, box.Max)

	a, ok := l.InputAnchor("join", "a")
	require.True(t, ok)
	assert.Equal(t, domain.Point{X: 100, Y: 100 + HeaderHeight + Padding + RowHeight/2}, a)

	b, ok := l.InputAnchor("join", "b")
	require.True(t, ok)
	assert.Equal(t, a.Y+RowHeight, b.Y)

	out, ok := l.OutputAnchor("join", "out")
	require.True(t, ok)
	assert.Equal(t, 320.0, out.X)

	_, ok = l.OutputAnchor("join", "a")
	assert.False(t, ok)
	_, ok = l.NodeBox("ghost")
	assert.False(t, ok)
}

func TestHitTest(t *testing.T) {
	g, l := setup(t)
	a, _ := l.InputAnchor("join", "a")
	out, _ := l.OutputAnchor("join", "out")

	assert.Equal(t, Hit{Kind: HitInput, NodeID: "join", Handle: "a"}, l.HitTest(a))
	assert.Equal(t, Hit{Kind: HitOutput, NodeID: "join", Handle: "out"}, l.HitTest(domain.Point{X: out.X + 3, Y: out.Y - 3}))
	assert.Equal(t, Hit{Kind: HitBody, NodeID: "join"}, l.HitTest(domain.Point{X: 200, Y: 110}))
	assert.Equal(t, HitNone, l.HitTest(domain.Point{X: 0, Y: 0}).Kind)

	// A later node overlapping the first one wins.
	require.NoError(t, g.AddNodeWithID("top", catalog.TypeSink, domain.Point{X: 150, Y: 100}, nil))
	assert.Equal(t, "top", l.HitTest(domain.Point{X: 200, Y: 110}).NodeID)
}

func TestEdgeCurve(t *testing.T) {
	b := EdgeCurve(domain.Point{X: 0, Y: 0}, domain.Point{X: 300, Y: 100})
	assert.Equal(t, domain.Point{X: 150, Y: 0}, b.C1)
	assert.Equal(t, domain.Point{X: 150, Y: 100}, b.C2)
	assert.Equal(t, b.Start, b.At(0))
	assert.Equal(t, b.End, b.At(1))

	// Short or backwards wires still bow out by the minimum offset.
	short := EdgeCurve(domain.Point{X: 0, Y: 0}, domain.Point{X: -20, Y: 0})
	assert.Equal(t, MinCurveOffset, short.C1.X)
	assert.Equal(t, -20-MinCurveOffset, short.C2.X)

	assert.Equal(t, "M 0 0 C 150 0, 150 100, 300 100", b.SVGPath())
}
