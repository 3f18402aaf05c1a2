package network_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/network/networktest"
)

// TestValidate_Errors verifies field and reference checks map to the right sentinel.
func TestValidate_Errors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(d *network.Data)
		err    error
	}{
		{"ZeroReactance", func(d *network.Data) { d.Lines[0].XPU = 0 }, network.ErrInvalidTable},
		{"NegativeCapacity", func(d *network.Data) { d.Lines[1].Capacity = -1 }, network.ErrInvalidTable},
		{"SelfLoop", func(d *network.Data) { d.Lines[2].NodeJ = d.Lines[2].NodeI }, network.ErrInvalidTable},
		{"EmptyZone", func(d *network.Data) { d.Nodes[1].Zone = "" }, network.ErrInvalidTable},
		{"DuplicateNode", func(d *network.Data) { d.Nodes[2].ID = "A" }, network.ErrDuplicateID},
		{"DuplicateLine", func(d *network.Data) { d.Lines[1].ID = "l1" }, network.ErrDuplicateID},
		{"DuplicatePlant", func(d *network.Data) { d.Plants[1].ID = "gA" }, network.ErrDuplicateID},
		{"UnknownEndpoint", func(d *network.Data) { d.Lines[0].NodeJ = "X" }, network.ErrUnknownNode},
		{"UnknownPlantNode", func(d *network.Data) { d.Plants[0].Node = "X" }, network.ErrUnknownNode},
		{"UnknownDemandNode", func(d *network.Data) { d.Demand[0].Node = "X" }, network.ErrUnknownNode},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := networktest.Triangle()
			tc.mutate(d)
			require.ErrorIs(t, d.Validate(), tc.err)
		})
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()
	require.NoError(t, networktest.Triangle().Validate())
	require.NoError(t, networktest.Radial().Validate())
}

// TestAccessors checks the derived lookups on the triangle fixture.
func TestAccessors(t *testing.T) {
	t.Parallel()
	d := networktest.Triangle()

	assert.Equal(t, []string{"Z1", "Z2"}, d.Zones())
	assert.Equal(t, []string{networktest.T1, networktest.T2}, d.Timesteps())
	assert.Equal(t, []float64{0, 0, 150}, d.NodeDemand(networktest.T1))
	assert.Equal(t, []float64{0, 0, 0}, d.NodeDemand("t9999"))
	assert.Equal(t, 150.0, d.MaxDemand("C"))
	assert.Equal(t, []string{"A", "B"}, d.ZoneNodes("Z1"))

	z, ok := d.ZoneOf("C")
	require.True(t, ok)
	assert.Equal(t, "Z2", z)
	_, ok = d.ZoneOf("X")
	assert.False(t, ok)

	assert.Equal(t, 300.0, d.InstalledCapacity("B"))
	assert.Equal(t, 0.0, d.InstalledCapacity("C"))
	require.Len(t, d.PlantsAt("A"), 1)
	assert.Equal(t, "gA", d.PlantsAt("A")[0].ID)

	i, ok := d.LineIndex("l3")
	require.True(t, ok)
	assert.Equal(t, 2, i)
	p, ok := d.Plant("gB")
	require.True(t, ok)
	assert.Equal(t, 20.0, p.MCEl)

	v, ok := d.NTCValue("Z1", "Z2")
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
	_, ok = d.NTCValue("Z1", "Z3")
	assert.False(t, ok)
}

// TestNodeDemand_Static uses Node.Demand when no series is given.
func TestNodeDemand_Static(t *testing.T) {
	t.Parallel()
	d := networktest.Triangle()
	d.Demand = nil
	d.Nodes[2].Demand = 42
	assert.Equal(t, []float64{0, 0, 42}, d.NodeDemand("any"))
	assert.Equal(t, 42.0, d.MaxDemand("C"))
	assert.Empty(t, d.Timesteps())
}

func TestComponents(t *testing.T) {
	t.Parallel()
	d := networktest.Radial()
	d.Nodes = append(d.Nodes, network.Node{ID: "E", Zone: "Z2"}, network.Node{ID: "F", Zone: "Z2"})
	d.Lines = append(d.Lines, network.Line{ID: "l5", NodeI: "F", NodeJ: "E", XPU: 1})

	comps := network.Components(d.Nodes, d.Lines)
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5}}, comps)

	assert.Equal(t, []int{2, 2, 3, 1, 1, 1}, network.Degree(d.Nodes, d.Lines))
}

func TestGraph(t *testing.T) {
	t.Parallel()
	d := networktest.Radial()
	d.Lines = append(d.Lines,
		network.Line{ID: "l5", NodeI: "A", NodeJ: "B", XPU: 0.5},
		network.Line{ID: "l6", NodeI: "A", NodeJ: "X", XPU: 1})

	g := network.Graph(d.Nodes, d.Lines)
	assert.Equal(t, []string{"A", "B", "C", "D"}, g.Vertices())
	assert.Equal(t, 5, g.EdgeCount(), "line to an unknown node is left out")

	e, ok := g.Edge("l5")
	require.True(t, ok)
	assert.InDelta(t, 2.0, e.Susceptance, 1e-12)
	v, ok := g.Vertex("A")
	require.True(t, ok)
	assert.True(t, v.Slack)
	assert.Equal(t, "Z1", v.Zone)
}

func TestComponents_Isolated(t *testing.T) {
	t.Parallel()
	nodes := []network.Node{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, [][]int{{0}, {1}}, network.Components(nodes, nil))
}

// TestLoad_RoundTrip saves the fixture as a CSV folder and loads it back.
func TestLoad_RoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	want := networktest.Triangle()
	require.NoError(t, network.Save(want, dir))

	got, err := network.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, want.Nodes, got.Nodes)
	assert.Equal(t, want.Lines, got.Lines)
	assert.Equal(t, want.Plants, got.Plants)
	assert.Equal(t, want.Demand, got.Demand)
	assert.Equal(t, want.NTC, got.NTC)
}

// TestLoad_Aliases reads alternative column names and defaults.
func TestLoad_Aliases(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write(network.NodesFile, "id,zone,slack\nn1,DE,1\nn2,DE,0\n")
	write(network.LinesFile, "id,node_i,node_j,x,maxflow\nl,n1,n2,0.5,10\n")

	d, err := network.Load(dir)
	require.NoError(t, err)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, network.Line{ID: "l", NodeI: "n1", NodeJ: "n2", XPU: 0.5, Capacity: 10, Contingency: true}, d.Lines[0])
	assert.True(t, d.Nodes[0].Slack)
	assert.Empty(t, d.Plants)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := network.Load(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, network.ErrInputNotFound)

	for _, name := range []string{"case118.m", "data.xlsx", "data.zip"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		_, err = network.Load(p)
		require.ErrorIs(t, err, network.ErrUnsupportedInputFormat, name)
	}

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))
	_, err = network.Load(empty)
	require.ErrorIs(t, err, network.ErrInputNotFound)

	bad := filepath.Join(dir, "bad")
	require.NoError(t, os.Mkdir(bad, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bad, network.NodesFile), []byte("index,zone\nA,Z\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(bad, network.LinesFile), []byte("index,node_i,node_j,x_pu,capacity\nl,A,A,abc,1\n"), 0o644))
	_, err = network.Load(bad)
	require.ErrorIs(t, err, network.ErrInvalidTable)
}
