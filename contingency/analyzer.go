// SPDX-License-Identifier: MIT

package contingency

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/dcgrid/bfs"
	"github.com/katalvlaran/dcgrid/topology"
)

// Basecase is the outage label of N-0 rows.
const Basecase = "basecase"

// DefaultEpsilon is the threshold on |1 - H[k][k]| below which an outage is undefined.
const DefaultEpsilon = 1e-8

// Option configures NewAnalyzer.
type Option func(*Analyzer)

// WithEpsilon overrides DefaultEpsilon. Panics if eps <= 0.
func WithEpsilon(eps float64) Option {
	if !(eps > 0) {
		panic(fmt.Sprintf("contingency: WithEpsilon(%g): eps must be > 0", eps))
	}
	return func(a *Analyzer) { a.eps = eps }
}

// WithWorkers bounds the goroutines FullSet uses; n <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithLogger sets the logger; nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// Analyzer holds the LODF matrix of a topology. It is immutable and safe for
// concurrent use.
type Analyzer struct {
	topo      *topology.Topology
	lodf      *mat.Dense // L×L, column = outage
	undefined []bool     // per outage line
	eps       float64
	workers   int
	log       *slog.Logger
}

// NewAnalyzer computes H = PTDF·Aᵀ and the LODF matrix of topo.
func NewAnalyzer(topo *topology.Topology, opts ...Option) (*Analyzer, error) {
	if topo == nil {
		return nil, contingencyErrorf("NewAnalyzer", ErrNilTopology)
	}
	a := &Analyzer{
		topo:    topo,
		eps:     DefaultEpsilon,
		workers: runtime.GOMAXPROCS(0),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With("component", "contingency")
	start := time.Now()

	nL := topo.NumLines()
	var h mat.Dense
	h.Mul(topo.PTDF(), topo.Incidence().T())

	a.lodf = mat.NewDense(nL, nL, nil)
	a.undefined = make([]bool, nL)
	radial := 0
	for k := 0; k < nL; k++ {
		denom := 1 - h.At(k, k)
		if math.Abs(denom) < a.eps {
			a.undefined[k] = true
			a.lodf.Set(k, k, -1)
			radial++
			continue
		}
		for l := 0; l < nL; l++ {
			a.lodf.Set(l, k, h.At(l, k)/denom)
		}
		a.lodf.Set(k, k, -1)
	}
	a.checkBridges()
	a.log.Debug("lodf computed", "lines", nL, "undefined", radial, "elapsed", time.Since(start))

	return a, nil
}

// Topology returns the topology the analyzer was built from.
func (a *Analyzer) Topology() *topology.Topology { return a.topo }

// LODF returns the L×L matrix; column k holds the flow shift onto every line
// per unit of pre-outage flow on line k. It must not be modified.
func (a *Analyzer) LODF() mat.Matrix { return a.lodf }

// LODFAt returns LODF[cb][co].
func (a *Analyzer) LODFAt(cb, co string) (float64, error) {
	l, k, err := a.pair("LODFAt", cb, co)
	if err != nil {
		return 0, err
	}

	return a.lodf.At(l, k), nil
}

// Undefined reports whether the outage of line co islands part of the network.
func (a *Analyzer) Undefined(co string) bool {
	k, ok := a.topo.LineIndex(co)
	return ok && a.undefined[k]
}

// checkBridges compares the numerical undefined flags with the graph: an
// outage islands buses exactly when the line is a bridge. Mismatches point at
// an epsilon unsuited to the network's reactances.
func (a *Analyzer) checkBridges() {
	g := a.topo.Graph()
	for k, l := range a.topo.Lines() {
		res, err := bfs.BFS(g, l.NodeI, bfs.WithSkipEdges(l.ID))
		if err != nil {
			a.log.Warn("bridge check failed", "line", l.ID, "error", err)
			continue
		}
		if bridge := !res.Reached(l.NodeJ); bridge != a.undefined[k] {
			a.log.Warn("outage classification disagrees with topology",
				"line", l.ID, "bridge", bridge, "undefined", a.undefined[k], "epsilon", a.eps)
		}
	}
}

// Islanded returns the buses cut off from their slack by the outage of
// line co, in visit order of the remaining component. It is empty when the
// outage keeps the component connected.
func (a *Analyzer) Islanded(co string) ([]string, error) {
	l, ok := a.topo.Line(co)
	if !ok {
		return nil, contingencyErrorf("Islanded", fmt.Errorf("%w: %q", ErrUnknownLine, co))
	}
	slacks := a.topo.Slacks()
	for c, comp := range a.topo.Components() {
		if !slices.Contains(comp, l.NodeI) {
			continue
		}
		res, err := bfs.BFS(a.topo.Graph(), slacks[c], bfs.WithSkipEdges(co))
		if err != nil {
			return nil, contingencyErrorf("Islanded", err)
		}
		var out []string
		for _, id := range comp {
			if !res.Reached(id) {
				out = append(out, id)
			}
		}

		return out, nil
	}

	return nil, nil
}

// CreateN1PTDFCBCO returns the PTDF row of monitored line cb after the
// outage of line co. The row of the outaged line itself is zero.
func (a *Analyzer) CreateN1PTDFCBCO(cb, co string) ([]float64, error) {
	l, k, err := a.pair("CreateN1PTDFCBCO", cb, co)
	if err != nil {
		return nil, err
	}
	if a.undefined[k] {
		return nil, contingencyErrorf("CreateN1PTDFCBCO", fmt.Errorf("%w: %q", ErrUndefinedOutage, co))
	}

	return a.n1Row(l, k, nil), nil
}

// n1Row writes p_l + LODF[l][k]·p_k into dst (allocated if nil).
func (a *Analyzer) n1Row(l, k int, dst []float64) []float64 {
	nN := a.topo.NumNodes()
	if dst == nil {
		dst = make([]float64, nN)
	}
	f := a.lodf.At(l, k)
	for n := 0; n < nN; n++ {
		dst[n] = a.topo.PTDFAt(l, n) + f*a.topo.PTDFAt(k, n)
	}

	return dst
}

// OutagePTDF returns the full L×N PTDF matrix after the outage of line co.
func (a *Analyzer) OutagePTDF(co string) (*mat.Dense, error) {
	k, ok := a.topo.LineIndex(co)
	if !ok {
		return nil, contingencyErrorf("OutagePTDF", fmt.Errorf("%w: %q", ErrUnknownLine, co))
	}
	if a.undefined[k] {
		return nil, contingencyErrorf("OutagePTDF", fmt.Errorf("%w: %q", ErrUndefinedOutage, co))
	}
	var out mat.Dense
	out.Outer(1, a.lodf.ColView(k), a.topo.PTDF().(mat.RowViewer).RowView(k))
	out.Add(a.topo.PTDF(), &out)

	return &out, nil
}

// N1Flows returns the post-outage flows f_l + LODF[l][co]·f_co for base flows
// f in line order.
func (a *Analyzer) N1Flows(flows []float64, co string) ([]float64, error) {
	k, ok := a.topo.LineIndex(co)
	if !ok {
		return nil, contingencyErrorf("N1Flows", fmt.Errorf("%w: %q", ErrUnknownLine, co))
	}
	if len(flows) != a.topo.NumLines() {
		return nil, contingencyErrorf("N1Flows", fmt.Errorf("%w: %d flows for %d lines",
			topology.ErrDimensionMismatch, len(flows), a.topo.NumLines()))
	}
	if a.undefined[k] {
		return nil, contingencyErrorf("N1Flows", fmt.Errorf("%w: %q", ErrUndefinedOutage, co))
	}
	out := make([]float64, len(flows))
	for l := range flows {
		out[l] = flows[l] + a.lodf.At(l, k)*flows[k]
	}

	return out, nil
}

func (a *Analyzer) pair(op, cb, co string) (int, int, error) {
	l, ok := a.topo.LineIndex(cb)
	if !ok {
		return 0, 0, contingencyErrorf(op, fmt.Errorf("%w: %q", ErrUnknownLine, cb))
	}
	k, ok := a.topo.LineIndex(co)
	if !ok {
		return 0, 0, contingencyErrorf(op, fmt.Errorf("%w: %q", ErrUnknownLine, co))
	}

	return l, k, nil
}
