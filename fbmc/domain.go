// SPDX-License-Identifier: MIT

package fbmc

import (
	"fmt"
	"math"
)

// Point is a domain vertex: exchange along X and along Y.
type Point struct {
	X, Y float64
}

// halfPlane is A·x + B·y ≤ C.
type halfPlane struct {
	A, B, C float64
}

func (h halfPlane) eval(p Point) float64 { return h.A*p.X + h.B*p.Y - h.C }

// BindingInfo describes a constraint on the domain boundary.
type BindingInfo struct {
	CB        string
	CO        string
	Direction Direction
	RAM       float64
	// A, B and C are the projected constraint A·x + B·y ≤ C.
	A, B, C float64
}

// Domain is the feasible region of two exchanges at one timestep.
type Domain struct {
	X, Y     [2]string
	Timestep string
	Vertices []Point // counter-clockwise
	Binding  []Constraint

	projected []halfPlane
	binding   []halfPlane
}

// Area returns the polygon area.
func (d *Domain) Area() float64 { return signedArea(d.Vertices) }

// Contains reports whether p satisfies every projected constraint within tol.
func (d *Domain) Contains(p Point, tol float64) bool {
	for _, h := range d.projected {
		if h.eval(p) > tol {
			return false
		}
	}

	return true
}

// Info returns the binding constraints with their projection.
func (d *Domain) Info() []BindingInfo {
	out := make([]BindingInfo, len(d.Binding))
	for i, c := range d.Binding {
		h := d.binding[i]
		out[i] = BindingInfo{CB: c.CB, CO: c.CO, Direction: c.Direction, RAM: c.RAM, A: h.A, B: h.B, C: h.C}
	}

	return out
}

// DomainOption configures GenerateFlowbasedDomain.
type DomainOption func(*domainOptions)

type domainOptions struct {
	zeroBase bool
	limit    float64
	tol      float64
}

// WithZeroBase holds the non-axis net positions at zero instead of the basecase.
func WithZeroBase() DomainOption {
	return func(o *domainOptions) { o.zeroBase = true }
}

// WithDomainLimit overrides the clipping box ±limit. Panics if limit ≤ 0.
func WithDomainLimit(limit float64) DomainOption {
	if limit <= 0 {
		panic("fbmc: WithDomainLimit requires limit > 0")
	}
	return func(o *domainOptions) { o.limit = limit }
}

// GenerateFlowbasedDomain intersects the constraints of timestep t projected
// onto the exchanges x[0]→x[1] and y[0]→y[1].
func (p *Parameters) GenerateFlowbasedDomain(x, y [2]string, t string, opts ...DomainOption) (*Domain, error) {
	o := domainOptions{limit: p.DomainLimit, tol: 1e-6}
	if o.limit <= 0 {
		o.limit = 1e5
	}
	for _, opt := range opts {
		opt(&o)
	}
	if x[0] == x[1] || y[0] == y[1] {
		return nil, fmt.Errorf("%w: %v %v", ErrDegenerateAxis, x, y)
	}
	np, ok := p.NetPosition[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimestep, t)
	}
	idx := make([]int, 4)
	for i, z := range []string{x[0], x[1], y[0], y[1]} {
		if idx[i] = p.zoneIndex(z); idx[i] < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownZone, z)
		}
	}

	// Axis zones move with the exchanges; only the others stay at basecase.
	base := make([]float64, len(np))
	if !o.zeroBase {
		copy(base, np)
		for _, i := range idx {
			base[i] = 0
		}
	}

	d := &Domain{X: x, Y: y, Timestep: t}
	var cons []Constraint
	for _, c := range p.At(t) {
		h := halfPlane{
			A: c.PTDF[idx[0]] - c.PTDF[idx[1]],
			B: c.PTDF[idx[2]] - c.PTDF[idx[3]],
			C: c.RAM - dot(c.PTDF, base),
		}
		if math.Abs(h.A) < 1e-12 && math.Abs(h.B) < 1e-12 {
			if h.C < -o.tol {
				return nil, fmt.Errorf("%w: %s/%s %s independent of both exchanges", ErrEmptyDomain, c.CB, c.CO, c.Direction)
			}
			continue
		}
		d.projected = append(d.projected, h)
		cons = append(cons, c)
	}

	l := o.limit
	poly := []Point{{-l, -l}, {l, -l}, {l, l}, {-l, l}}
	for _, h := range d.projected {
		if poly = clip(poly, h); len(poly) == 0 {
			return nil, fmt.Errorf("%w: timestep %s", ErrEmptyDomain, t)
		}
	}
	d.Vertices = dedupe(poly, o.tol)
	if len(d.Vertices) < 3 {
		return nil, fmt.Errorf("%w: timestep %s", ErrEmptyDomain, t)
	}

	scale := math.Max(1, l)
	for i, h := range d.projected {
		if onBoundary(d.Vertices, h, o.tol*scale) {
			d.Binding = append(d.Binding, cons[i])
			d.binding = append(d.binding, h)
		}
	}

	return d, nil
}

func (p *Parameters) zoneIndex(z string) int {
	for i, name := range p.Zones {
		if name == z {
			return i
		}
	}

	return -1
}

// clip keeps the part of the convex polygon with h.eval ≤ 0
// (Sutherland-Hodgman against one edge). Orientation is preserved.
func clip(poly []Point, h halfPlane) []Point {
	var out []Point
	for i, cur := range poly {
		prev := poly[(i+len(poly)-1)%len(poly)]
		ec, ep := h.eval(cur), h.eval(prev)
		switch {
		case ec <= 0 && ep <= 0:
			out = append(out, cur)
		case ec <= 0:
			out = append(out, intersect(prev, cur, ep, ec), cur)
		case ep <= 0:
			out = append(out, intersect(prev, cur, ep, ec))
		}
	}

	return out
}

func intersect(a, b Point, ea, eb float64) Point {
	s := ea / (ea - eb)
	return Point{X: a.X + s*(b.X-a.X), Y: a.Y + s*(b.Y-a.Y)}
}

// dedupe drops consecutive vertices closer than tol.
func dedupe(poly []Point, tol float64) []Point {
	var out []Point
	for _, p := range poly {
		if n := len(out); n > 0 && near(out[n-1], p, tol) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && near(out[0], out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}

	return out
}

func near(a, b Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// onBoundary reports whether an edge of poly lies on h = 0.
func onBoundary(poly []Point, h halfPlane, tol float64) bool {
	norm := math.Hypot(h.A, h.B)
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		if math.Abs(h.eval(a))/norm <= tol && math.Abs(h.eval(b))/norm <= tol {
			return true
		}
	}

	return false
}

// signedArea is positive for counter-clockwise vertices.
func signedArea(poly []Point) float64 {
	var s float64
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		s += a.X*b.Y - b.X*a.Y
	}

	return s / 2
}
