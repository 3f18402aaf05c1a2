package topology_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/network/networktest"
	"github.com/katalvlaran/dcgrid/topology"
)

const eps = 1e-12

func triangle(t *testing.T, opts ...topology.Option) *topology.Topology {
	t.Helper()
	d := networktest.Triangle()
	topo, err := topology.CalculateParameters(d.Nodes, d.Lines, opts...)
	require.NoError(t, err)

	return topo
}

// TestPTDF_Triangle compares against the hand-derived matrix.
func TestPTDF_Triangle(t *testing.T) {
	t.Parallel()
	topo := triangle(t)

	want := mat.NewDense(3, 3, []float64{
		0, -2.0 / 3, -1.0 / 3,
		0, 1.0 / 3, -1.0 / 3,
		0, -1.0 / 3, -2.0 / 3,
	})
	require.True(t, mat.EqualApprox(want, topo.PTDF(), eps), "PTDF=%v", mat.Formatted(topo.PTDF()))
	assert.Equal(t, []string{"A"}, topo.Slacks())

	row, err := topo.PTDFRow("l2")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1.0 / 3, -1.0 / 3}, row, eps)

	_, err = topo.PTDFRow("nope")
	require.ErrorIs(t, err, topology.ErrUnknownLine)
}

// TestMatrices checks incidence, susceptance and bus matrix shapes and entries.
func TestMatrices(t *testing.T) {
	t.Parallel()
	d := networktest.Triangle()
	d.Lines[0].XPU = 0.5
	topo, err := topology.CalculateParameters(d.Nodes, d.Lines)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 1, 1}, topo.Susceptance())
	a := topo.Incidence()
	assert.Equal(t, 1.0, a.At(0, 0))
	assert.Equal(t, -1.0, a.At(0, 1))
	assert.Equal(t, 0.0, a.At(0, 2))

	want := mat.NewDense(3, 3, []float64{
		3, -2, -1,
		-2, 3, -1,
		-1, -1, 2,
	})
	assert.True(t, mat.EqualApprox(want, topo.BusSusceptance(), eps))
}

// TestFlows_Conservation verifies Aᵀ·f reproduces a balanced injection.
func TestFlows_Conservation(t *testing.T) {
	t.Parallel()
	topo := triangle(t)
	inj := []float64{100, 50, -150}

	f, err := topo.Flows(inj)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{50.0 / 3, 200.0 / 3, 250.0 / 3}, f, 1e-9)

	var net mat.VecDense
	net.MulVec(topo.Incidence().T(), mat.NewVecDense(3, f))
	assert.InDeltaSlice(t, inj, net.RawVector().Data, 1e-9)

	_, err = topo.Flows([]float64{1})
	require.ErrorIs(t, err, topology.ErrDimensionMismatch)
}

func TestIslands(t *testing.T) {
	t.Parallel()
	d := networktest.Triangle()
	d.Nodes = append(d.Nodes,
		network.Node{ID: "D", Zone: "Z3", Slack: true},
		network.Node{ID: "E", Zone: "Z3"})
	d.Lines = append(d.Lines, network.Line{ID: "l5", NodeI: "D", NodeJ: "E", XPU: 1, Capacity: 10})

	topo, err := topology.CalculateParameters(d.Nodes, d.Lines)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D"}, topo.Slacks())
	assert.Equal(t, [][]string{{"A", "B", "C"}, {"D", "E"}}, topo.Components())

	l5, _ := topo.LineIndex("l5")
	e, _ := topo.NodeIndex("E")
	assert.InDelta(t, -1.0, topo.PTDFAt(l5, e), eps)
	row, err := topo.PTDFRow("l1")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, -2.0 / 3, -1.0 / 3, 0, 0}, row, eps)
}

func TestSingular(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name      string
		mutate    func(d *network.Data)
		opts      []topology.Option
		component int
	}{
		{"NoSlack", func(d *network.Data) { d.Nodes[0].Slack = false }, nil, 0},
		{"IsolatedNode", func(d *network.Data) {
			d.Nodes = append(d.Nodes, network.Node{ID: "E", Zone: "Z2"})
		}, nil, 1},
		{"ZeroReactance", func(d *network.Data) { d.Lines[1].XPU = 0 }, nil, -1},
		{"IllConditioned", func(d *network.Data) {}, []topology.Option{topology.WithConditionLimit(1.5)}, 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := networktest.Triangle()
			tc.mutate(d)
			_, err := topology.CalculateParameters(d.Nodes, d.Lines, tc.opts...)
			require.ErrorIs(t, err, topology.ErrSingularTopology)
			var se *topology.SingularTopologyError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.component, se.Component)
		})
	}
}

func TestInputErrors(t *testing.T) {
	t.Parallel()
	d := networktest.Triangle()

	_, err := topology.CalculateParameters(nil, d.Lines)
	require.ErrorIs(t, err, topology.ErrEmptyNetwork)

	d.Lines[0].NodeJ = "X"
	_, err = topology.CalculateParameters(d.Nodes, d.Lines)
	require.ErrorIs(t, err, topology.ErrUnknownNode)
}

// TestAutoSlack picks the highest-degree node when no slack is flagged.
func TestAutoSlack(t *testing.T) {
	t.Parallel()
	d := networktest.Radial()
	d.Nodes[0].Slack = false

	topo, err := topology.CalculateParameters(d.Nodes, d.Lines, topology.WithAutoSlack())
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, topo.Slacks())

	c, _ := topo.NodeIndex("C")
	for l := 0; l < topo.NumLines(); l++ {
		assert.Zero(t, topo.PTDFAt(l, c))
	}
}

// TestDuplicateSlack keeps the first slack and logs the demotion.
func TestDuplicateSlack(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d := networktest.Triangle()
	d.Nodes[2].Slack = true

	topo, err := topology.CalculateParameters(d.Nodes, d.Lines, topology.WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, topo.Slacks())
	assert.Contains(t, buf.String(), "demoting extra slack")
	assert.Contains(t, buf.String(), "node=C")
}

// TestInputsNotMutated ensures the caller's slices are copied.
func TestInputsNotMutated(t *testing.T) {
	t.Parallel()
	d := networktest.Triangle()
	topo, err := topology.CalculateParameters(d.Nodes, d.Lines)
	require.NoError(t, err)

	d.Lines[0].ID = "changed"
	_, ok := topo.Line("l1")
	assert.True(t, ok)
	assert.Equal(t, []string{"l1", "l2", "l3"}, topo.LineIDs())
	assert.Equal(t, []string{"A", "B", "C"}, topo.NodeIDs())
}

func TestWithConditionLimit_Panics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { topology.WithConditionLimit(1) })
}
