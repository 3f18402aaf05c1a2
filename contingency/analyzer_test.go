package contingency_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/network/networktest"
	"github.com/katalvlaran/dcgrid/topology"
)

const eps = 1e-9

func analyzer(t testing.TB, d *network.Data, opts ...contingency.Option) *contingency.Analyzer {
	t.Helper()
	topo, err := topology.CalculateParameters(d.Nodes, d.Lines)
	require.NoError(t, err)
	a, err := contingency.NewAnalyzer(topo, opts...)
	require.NoError(t, err)

	return a
}

func TestLODF_Triangle(t *testing.T) {
	t.Parallel()
	a := analyzer(t, networktest.Triangle())

	want := mat.NewDense(3, 3, []float64{
		-1, -1, 1,
		-1, -1, 1,
		1, 1, -1,
	})
	require.True(t, mat.EqualApprox(want, a.LODF(), eps), "LODF=%v", mat.Formatted(a.LODF()))

	v, err := a.LODFAt("l3", "l1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, eps)
	_, err = a.LODFAt("l3", "zz")
	require.ErrorIs(t, err, contingency.ErrUnknownLine)
}

func TestCreateN1PTDFCBCO(t *testing.T) {
	t.Parallel()
	a := analyzer(t, networktest.Triangle())

	row, err := a.CreateN1PTDFCBCO("l2", "l1")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 0}, row, eps)

	row, err = a.CreateN1PTDFCBCO("l1", "l1")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, row, eps)

	_, err = a.CreateN1PTDFCBCO("x", "l1")
	require.ErrorIs(t, err, contingency.ErrUnknownLine)
}

// TestN1_MatchesRecomputation compares LODF-shifted rows against a PTDF
// recomputed on the network without the outaged line.
func TestN1_MatchesRecomputation(t *testing.T) {
	t.Parallel()
	d := networktest.Triangle()
	d.Lines[0].XPU = 0.4
	d.Lines[2].XPU = 1.7
	a := analyzer(t, d)

	for k, out := range d.Lines {
		var rest []network.Line
		for i, l := range d.Lines {
			if i != k {
				rest = append(rest, l)
			}
		}
		reduced, err := topology.CalculateParameters(d.Nodes, rest)
		require.NoError(t, err)

		post, err := a.OutagePTDF(out.ID)
		require.NoError(t, err)
		for _, l := range rest {
			want, err := reduced.PTDFRow(l.ID)
			require.NoError(t, err)
			got, err := a.CreateN1PTDFCBCO(l.ID, out.ID)
			require.NoError(t, err)
			assert.InDeltaSlice(t, want, got, eps, "cb=%s co=%s", l.ID, out.ID)

			li, _ := a.Topology().LineIndex(l.ID)
			assert.InDeltaSlice(t, want, mat.Row(nil, li, post), eps)
		}
	}
}

func TestN1Flows(t *testing.T) {
	t.Parallel()
	a := analyzer(t, networktest.Triangle())
	base, err := a.Topology().Flows([]float64{100, 50, -150})
	require.NoError(t, err)

	f, err := a.N1Flows(base, "l1")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 50, 100}, f, 1e-9)

	_, err = a.N1Flows(base[:2], "l1")
	require.ErrorIs(t, err, topology.ErrDimensionMismatch)
	_, err = a.N1Flows(base, "zz")
	require.ErrorIs(t, err, contingency.ErrUnknownLine)
}

func TestRadialOutage(t *testing.T) {
	t.Parallel()
	a := analyzer(t, networktest.Radial())

	assert.True(t, a.Undefined("l4"))
	assert.False(t, a.Undefined("l1"))
	_, err := a.CreateN1PTDFCBCO("l1", "l4")
	require.ErrorIs(t, err, contingency.ErrUndefinedOutage)
	_, err = a.OutagePTDF("l4")
	require.ErrorIs(t, err, contingency.ErrUndefinedOutage)

	// a radial line picks up nothing from outages elsewhere
	v, err := a.LODFAt("l4", "l1")
	require.NoError(t, err)
	assert.InDelta(t, 0, v, eps)
}

func TestIslanded(t *testing.T) {
	t.Parallel()
	a := analyzer(t, networktest.Radial())

	cut, err := a.Islanded("l4")
	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, cut)

	cut, err = a.Islanded("l1")
	require.NoError(t, err)
	assert.Empty(t, cut)

	_, err = a.Islanded("missing")
	require.ErrorIs(t, err, contingency.ErrUnknownLine)
}

func TestBridgeCheck(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	analyzer(t, networktest.Radial(), contingency.WithLogger(logger))
	assert.NotContains(t, buf.String(), "disagrees")

	// An oversized epsilon flags meshed lines as undefined
	buf.Reset()
	a := analyzer(t, networktest.Radial(), contingency.WithLogger(logger), contingency.WithEpsilon(2))
	assert.True(t, a.Undefined("l1"))
	assert.Equal(t, 3, strings.Count(buf.String(), "outage classification disagrees"))
	assert.NotContains(t, buf.String(), "line=l4")
}

func TestNewAnalyzer_Errors(t *testing.T) {
	t.Parallel()
	_, err := contingency.NewAnalyzer(nil)
	require.ErrorIs(t, err, contingency.ErrNilTopology)
	assert.Panics(t, func() { contingency.WithEpsilon(0) })
}

func BenchmarkFullSet(b *testing.B) {
	d := networktest.Radial()
	a := analyzer(b, d)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := a.FullSet(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
