// SPDX-License-Identifier: MIT

package result

// Variable names as written by the market model.
const (
	VarG         = "G"
	VarDES       = "D_es"
	VarDPS       = "D_ps"
	VarCURT      = "CURT"
	VarInfeasPos = "INFEASIBILITY_EL_POS"
	VarInfeasNeg = "INFEASIBILITY_EL_NEG"
	VarEBNodal   = "EB_nodal"
	VarEBZonal   = "EB_zonal"
)

// ObjectiveValue is the Attributes.Objective key of the total objective.
const ObjectiveValue = "Objective Value"

// KnownVariables lists the variables Load and Save handle, in file order.
var KnownVariables = []string{VarG, VarDES, VarDPS, VarCURT, VarInfeasPos, VarInfeasNeg, VarEBNodal, VarEBZonal}

// Record is one value of a variable, indexed by plant, node or zone and timestep.
type Record struct {
	Index    string
	Timestep string
	Value    float64
}

// Variable is the long-format series of one solver variable.
type Variable []Record

// Lookup indexes v by timestep and index.
func (v Variable) Lookup() map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for _, r := range v {
		m, ok := out[r.Timestep]
		if !ok {
			m = make(map[string]float64)
			out[r.Timestep] = m
		}
		m[r.Index] += r.Value
	}

	return out
}

// Sum returns the total of v at timestep t.
func (v Variable) Sum(t string) float64 {
	var s float64
	for _, r := range v {
		if r.Timestep == t {
			s += r.Value
		}
	}

	return s
}

// Indexes returns the distinct indexes of v in order of first appearance.
func (v Variable) Indexes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range v {
		if !seen[r.Index] {
			seen[r.Index] = true
			out = append(out, r.Index)
		}
	}

	return out
}

// Variables holds the solver variables by name.
type Variables map[string]Variable

// Attributes describes a result.
type Attributes struct {
	Name         string             `json:"name"`
	Title        string             `json:"title,omitempty"`
	Source       string             `json:"source,omitempty"`
	ModelHorizon []string           `json:"model_horizon"`
	Objective    map[string]float64 `json:"objective"`

	// CorrespondingMarketResultName names the market result a redispatch
	// result was computed against; nil for market results.
	CorrespondingMarketResultName *string `json:"corresponding_market_result_name"`

	IsRedispatchResult bool `json:"is_redispatch_result,omitempty"`
}
