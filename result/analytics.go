// SPDX-License-Identifier: MIT

package result

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// NodeValue is a per-node quantity at one timestep.
type NodeValue struct {
	Timestep string
	Node     string
	Zone     string
	Value    float64
}

// ZoneValue is a per-zone quantity at one timestep.
type ZoneValue struct {
	Timestep string
	Zone     string
	Value    float64
}

// PlantValue is a per-plant quantity at one timestep.
type PlantValue struct {
	Timestep string
	Plant    string
	Node     string
	Zone     string
	Type     string
	Value    float64
}

// Balance is the system-wide energy balance of one timestep.
type Balance struct {
	Timestep   string
	Generation float64
	Demand     float64
	Storage    float64 // charging D_es + D_ps
	InfeasPos  float64
	InfeasNeg  float64
}

// Residual returns generation - demand - storage + infeas_pos - infeas_neg.
func (b Balance) Residual() float64 {
	return b.Generation - b.Demand - b.Storage + b.InfeasPos - b.InfeasNeg
}

// RedispatchRow is the change of one plant against the reference dispatch.
type RedispatchRow struct {
	Timestep    string
	Plant       string
	Node        string
	GRedispatch float64
	GMarket     float64
	Delta       float64
	DeltaAbs    float64
}

// RedispatchTable lists per-plant redispatch, timestep-major. Cost prices
// the absolute volume at redispatch.cost per MWh.
type RedispatchTable struct {
	Reference string
	Rows      []RedispatchRow
	Cost      float64
}

// Clone returns a copy of t.
func (t *RedispatchTable) Clone() *RedispatchTable {
	out := *t
	out.Rows = slices.Clone(t.Rows)
	return &out
}

// Sum returns the signed and absolute delta totals.
func (t *RedispatchTable) Sum() (delta, abs float64) {
	for _, r := range t.Rows {
		delta += r.Delta
		abs += r.DeltaAbs
	}

	return delta, abs
}

// Redispatch compares G against the market result named by
// Attributes.CorrespondingMarketResultName. It returns
// (nil, ErrMissingReferenceResult) when the name is unset or does not
// resolve inside the result's collection.
func (r *Result) Redispatch() (*RedispatchTable, error) {
	ref := r.Attributes.CorrespondingMarketResultName
	if ref == nil || *ref == "" || r.coll == nil {
		return nil, ErrMissingReferenceResult
	}
	market, err := r.coll.Get(*ref)
	if err != nil {
		r.log.Warn("reference market result not loaded", "reference", *ref)
		return nil, ErrMissingReferenceResult
	}

	return cached(r.cache, keyRedispatchPrefix+*ref, func() (*RedispatchTable, error) {
		return r.redispatch(market), nil
	})
}

func (r *Result) redispatch(market *Result) *RedispatchTable {
	redisp, base := r.Vars[VarG].Lookup(), market.Vars[VarG].Lookup()
	out := &RedispatchTable{Reference: market.Name()}
	for _, t := range r.Attributes.ModelHorizon {
		plants := make(map[string]bool)
		for p := range redisp[t] {
			plants[p] = true
		}
		for p := range base[t] {
			plants[p] = true
		}
		ids := make([]string, 0, len(plants))
		for p := range plants {
			ids = append(ids, p)
		}
		sort.Strings(ids)
		for _, p := range ids {
			g, m := redisp[t][p], base[t][p]
			row := RedispatchRow{Timestep: t, Plant: p, GRedispatch: g, GMarket: m, Delta: g - m, DeltaAbs: math.Abs(g - m)}
			if plant, ok := r.data.Plant(p); ok {
				row.Node = plant.Node
			}
			out.Rows = append(out.Rows, row)
			out.Cost += row.DeltaAbs * r.cfg.Redispatch.Cost
		}
	}

	return out
}

// Price returns EB_nodal + EB_zonal of the node's zone for every node and
// timestep. Missing duals count as zero.
func (r *Result) Price() ([]NodeValue, error) {
	return cached(r.cache, KeyPrice, func() ([]NodeValue, error) {
		nodal, zonal := r.Vars[VarEBNodal].Lookup(), r.Vars[VarEBZonal].Lookup()
		out := make([]NodeValue, 0, len(r.Attributes.ModelHorizon)*len(r.data.Nodes))
		for _, t := range r.Attributes.ModelHorizon {
			for _, n := range r.data.Nodes {
				out = append(out, NodeValue{Timestep: t, Node: n.ID, Zone: n.Zone, Value: nodal[t][n.ID] + zonal[t][n.Zone]})
			}
		}
		return out, nil
	})
}

// PriceDispersion returns max - min price across nodes per timestep.
func (r *Result) PriceDispersion() (map[string]float64, error) {
	prices, err := r.Price()
	if err != nil {
		return nil, err
	}

	return dispersion(prices, func(NodeValue) string { return "" }), nil
}

// ZonalPriceDispersion returns, per timestep, the largest max - min price
// found inside any single zone.
func (r *Result) ZonalPriceDispersion() (map[string]float64, error) {
	prices, err := r.Price()
	if err != nil {
		return nil, err
	}

	return dispersion(prices, func(v NodeValue) string { return v.Zone }), nil
}

func dispersion(prices []NodeValue, group func(NodeValue) string) map[string]float64 {
	type span struct{ lo, hi float64 }
	spans := make(map[[2]string]*span)
	for _, p := range prices {
		k := [2]string{p.Timestep, group(p)}
		s, ok := spans[k]
		if !ok {
			spans[k] = &span{p.Value, p.Value}
			continue
		}
		s.lo, s.hi = math.Min(s.lo, p.Value), math.Max(s.hi, p.Value)
	}
	out := make(map[string]float64)
	for k, s := range spans {
		out[k[0]] = math.Max(out[k[0]], s.hi-s.lo)
	}

	return out
}

// NetPosition returns the summed nodal injection of every zone per timestep.
func (r *Result) NetPosition() ([]ZoneValue, error) {
	return cached(r.cache, KeyNetPosition, func() ([]ZoneValue, error) {
		in, err := r.NodalInjection()
		if err != nil {
			return nil, err
		}
		zones := r.data.Zones()
		zi := make(map[string]int, len(zones))
		for i, z := range zones {
			zi[z] = i
		}
		out := make([]ZoneValue, 0, len(in.Timesteps)*len(zones))
		for ti, t := range in.Timesteps {
			np := make([]float64, len(zones))
			for ni, id := range in.Nodes {
				z, _ := r.data.ZoneOf(id)
				np[zi[z]] += in.Values[ti][ni]
			}
			for i, z := range zones {
				out = append(out, ZoneValue{Timestep: t, Zone: z, Value: np[i]})
			}
		}
		return out, nil
	})
}

// Infeasibility returns the non-zero INFEASIBILITY_EL_POS - INFEASIBILITY_EL_NEG
// values by node.
func (r *Result) Infeasibility() ([]NodeValue, error) {
	return cached(r.cache, KeyInfeasibility, func() ([]NodeValue, error) {
		pos, neg := r.Vars[VarInfeasPos].Lookup(), r.Vars[VarInfeasNeg].Lookup()
		var out []NodeValue
		for _, t := range r.Attributes.ModelHorizon {
			for _, n := range r.data.Nodes {
				if v := pos[t][n.ID] - neg[t][n.ID]; v != 0 {
					out = append(out, NodeValue{Timestep: t, Node: n.ID, Zone: n.Zone, Value: v})
				}
			}
		}
		return out, nil
	})
}

// Demand returns the network demand of every node per timestep.
func (r *Result) Demand() ([]NodeValue, error) {
	return cached(r.cache, KeyDemand, func() ([]NodeValue, error) {
		out := make([]NodeValue, 0, len(r.Attributes.ModelHorizon)*len(r.data.Nodes))
		for _, t := range r.Attributes.ModelHorizon {
			for i, d := range r.data.NodeDemand(t) {
				n := r.data.Nodes[i]
				out = append(out, NodeValue{Timestep: t, Node: n.ID, Zone: n.Zone, Value: d})
			}
		}
		return out, nil
	})
}

// Generation returns G joined with the plant's node, zone and type.
func (r *Result) Generation() ([]PlantValue, error) {
	return cached(r.cache, KeyGeneration, func() ([]PlantValue, error) {
		return r.plantValues(VarG)
	})
}

// StorageGeneration returns the storage charging D_es and D_ps by plant.
func (r *Result) StorageGeneration() ([]PlantValue, error) {
	return cached(r.cache, KeyStorage, func() ([]PlantValue, error) {
		es, err := r.plantValues(VarDES)
		if err != nil {
			return nil, err
		}
		ps, err := r.plantValues(VarDPS)
		if err != nil {
			return nil, err
		}
		return append(es, ps...), nil
	})
}

// Curtailment returns CURT by plant.
func (r *Result) Curtailment() ([]PlantValue, error) {
	return cached(r.cache, KeyCurtailment, func() ([]PlantValue, error) {
		return r.plantValues(VarCURT)
	})
}

func (r *Result) plantValues(name string) ([]PlantValue, error) {
	out := make([]PlantValue, 0, len(r.Vars[name]))
	for _, rec := range r.Vars[name] {
		if _, ok := r.steps[rec.Timestep]; !ok {
			continue
		}
		p, ok := r.data.Plant(rec.Index)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown plant %q", ErrMalformedResult, name, rec.Index)
		}
		zone, _ := r.data.ZoneOf(p.Node)
		out = append(out, PlantValue{Timestep: rec.Timestep, Plant: p.ID, Node: p.Node, Zone: zone, Type: p.Type, Value: rec.Value})
	}

	return out, nil
}

// SystemBalance returns the energy balance of every timestep.
func (r *Result) SystemBalance() ([]Balance, error) {
	return cached(r.cache, KeySystemBalance, func() ([]Balance, error) {
		out := make([]Balance, len(r.Attributes.ModelHorizon))
		for i, t := range r.Attributes.ModelHorizon {
			b := Balance{
				Timestep:   t,
				Generation: r.Vars[VarG].Sum(t),
				Storage:    r.Vars[VarDES].Sum(t) + r.Vars[VarDPS].Sum(t),
				InfeasPos:  r.Vars[VarInfeasPos].Sum(t),
				InfeasNeg:  r.Vars[VarInfeasNeg].Sum(t),
			}
			for _, d := range r.data.NodeDemand(t) {
				b.Demand += d
			}
			out[i] = b
		}
		return out, nil
	})
}

// CheckEnergyBalance fails with ErrEnergyBalance on the first timestep whose
// residual exceeds tol relative to the objective scale, max(1, |objective|).
func (r *Result) CheckEnergyBalance(tol float64) error {
	bal, err := r.SystemBalance()
	if err != nil {
		return err
	}
	limit := tol * math.Max(1, math.Abs(r.Attributes.Objective[ObjectiveValue]))
	for _, b := range bal {
		if res := b.Residual(); math.Abs(res) > limit {
			return fmt.Errorf("%w: timestep %s residual %g above %g", ErrEnergyBalance, b.Timestep, res, limit)
		}
	}

	return nil
}

// SumCosts returns the sum of the itemized objective components, every
// Attributes.Objective entry except ObjectiveValue.
func (r *Result) SumCosts() float64 {
	var s float64
	for k, v := range r.Attributes.Objective {
		if k != ObjectiveValue {
			s += v
		}
	}

	return s
}

// DispatchCost returns Σ G × marginal cost over the model horizon.
func (r *Result) DispatchCost() (float64, error) {
	gen, err := r.Generation()
	if err != nil {
		return 0, err
	}
	var s float64
	for _, g := range gen {
		p, _ := r.data.Plant(g.Plant)
		s += g.Value * p.MCEl
	}

	return s, nil
}

// CheckObjective fails with ErrObjectiveMismatch when the reported objective
// differs from SumCosts by more than tol relative to its magnitude.
func (r *Result) CheckObjective(tol float64) error {
	obj, ok := r.Attributes.Objective[ObjectiveValue]
	if !ok {
		return fmt.Errorf("%w: objective has no %q", ErrMalformedResult, ObjectiveValue)
	}
	sum := r.SumCosts()
	if math.Abs(obj-sum) > tol*math.Max(1, math.Abs(obj)) {
		return fmt.Errorf("%w: %g != %g", ErrObjectiveMismatch, obj, sum)
	}

	return nil
}
