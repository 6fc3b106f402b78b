package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/domain"
	"github.com/aretw0/flowcanvas/pkg/graph"
	"github.com/aretw0/flowcanvas/pkg/interaction"
	"github.com/aretw0/flowcanvas/pkg/layout"
	"github.com/aretw0/flowcanvas/pkg/viewport"
)

func TestBuild(t *testing.T) {
	g := graph.New(catalog.Builtin())
	require.NoError(t, g.AddNodeWithID("a", catalog.TypeText, domain.Point{X: 0, Y: 0}, nil))
	require.NoError(t, g.AddNodeWithID("b", catalog.TypeEcho, domain.Point{X: 400, Y: 0}, nil))
	_, err := g.ConnectEdge(domain.WorkflowEdge{ID: "e1", Source: "a", SourceHandle: "text", Target: "b", TargetHandle: "in"})
	require.NoError(t, err)

	v := viewport.New()
	v.ZoomAt(domain.Point{}, -0.5) // zoom 0.5
	v.Pan(domain.Point{X: 10, Y: 20})

	run := domain.NewRunResult(g.Snapshot())
	run.Statuses["a"] = domain.StatusCompleted
	run.Outputs["a"] = map[string]any{"text": "hi"}

	s := Build(g, v, WithRun(run), WithSelection("b"))

	assert.Equal(t, domain.ViewportState{X: 10, Y: 20, Zoom: 0.5}, s.Viewport)
	require.Len(t, s.Nodes, 2)

	a := s.Nodes[0]
	assert.Equal(t, domain.StatusCompleted, a.Status)
	assert.Equal(t, "hi", a.Output["text"])
	assert.False(t, a.Selected)
	assert.Equal(t, domain.Point{X: 10, Y: 20}, a.Bounds.Min)
	assert.Equal(t, 10+layout.NodeWidth*0.5, a.Bounds.Max.X)
	require.Len(t, a.Outputs, 1)
	assert.True(t, a.Outputs[0].Connected)

	b := s.Nodes[1]
	assert.Equal(t, domain.StatusIdle, b.Status)
	assert.True(t, b.Selected)
	assert.True(t, b.Inputs[0].Connected)
	assert.False(t, b.Outputs[0].Connected)

	require.Len(t, s.Edges, 1)
	e := s.Edges[0]
	assert.Equal(t, a.Outputs[0].Screen, e.From)
	assert.Equal(t, b.Inputs[0].Screen, e.To)
	assert.Equal(t, e.From, e.Curve.Start)
	assert.Nil(t, s.Pending)
}

func TestBuild_UndeclaredHandleFallsBackToHeader(t *testing.T) {
	g := graph.New(catalog.Builtin())
	require.NoError(t, g.AddNodeWithID("a", catalog.TypeText, domain.Point{}, nil))
	require.NoError(t, g.AddNodeWithID("b", catalog.TypeSink, domain.Point{X: 300}, nil))
	_, err := g.Connect("a", "nope", "b", "nada")
	require.NoError(t, err)

	s := Build(g, viewport.New())
	require.Len(t, s.Edges, 1)
	assert.Equal(t, domain.Point{X: layout.NodeWidth, Y: layout.HeaderHeight / 2}, s.Edges[0].From)
	assert.Equal(t, domain.Point{X: 300, Y: layout.HeaderHeight / 2}, s.Edges[0].To)
}

func TestBuild_FromController(t *testing.T) {
	g := graph.New(catalog.Builtin())
	require.NoError(t, g.AddNodeWithID("a", catalog.TypeText, domain.Point{}, nil))
	v := viewport.New()
	l := layout.New(g)
	ctrl := interaction.New(g, v, l)

	anchor, _ := l.OutputAnchor("a", "text")
	require.NoError(t, ctrl.Handle(interaction.Event{Kind: interaction.Press, Screen: anchor}))
	require.NoError(t, ctrl.Handle(interaction.Event{Kind: interaction.Move, Screen: domain.Point{X: 500, Y: 500}}))

	s := Build(g, v, FromController(ctrl))
	require.NotNil(t, s.Pending)
	assert.Equal(t, anchor, s.Pending.From)
	assert.Equal(t, domain.Point{X: 500, Y: 500}, s.Pending.To)
}
