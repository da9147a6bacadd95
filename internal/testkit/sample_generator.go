package testkit

import (
	"fmt"
	"math/rand"

	"bayesview/domain/cpd"
	"bayesview/domain/dataset"
	"bayesview/domain/network"

	"gonum.org/v1/gonum/mat"
)

// SampleGeneratorConfig configures forward sampling from a known network
type SampleGeneratorConfig struct {
	Rows        int     `json:"rows"`
	Seed        int64   `json:"seed"`
	MissingRate float64 `json:"missing_rate"` // probability that a cell is blanked after sampling
}

// DefaultSampleConfig returns sensible defaults for sample generation
func DefaultSampleConfig() SampleGeneratorConfig {
	return SampleGeneratorConfig{
		Rows: 5000,
		Seed: 42,
	}
}

// SampleGenerator draws sample tables whose true CPDs are known
type SampleGenerator struct {
	config SampleGeneratorConfig
	rng    *rand.Rand
}

// NewSampleGenerator creates a new seeded sample generator
func NewSampleGenerator(config SampleGeneratorConfig) *SampleGenerator {
	return &SampleGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate forward-samples every variable in topological order
func (g *SampleGenerator) Generate(model *network.Model, truth map[network.Variable]*cpd.CPD) (*dataset.Table, error) {
	variables := model.Variables()
	for _, v := range variables {
		if _, ok := truth[v]; !ok {
			return nil, fmt.Errorf("no ground truth CPD for %s", v)
		}
	}

	columns := make(map[network.Variable]*dataset.Column, len(variables))
	for _, v := range variables {
		col := &dataset.Column{Name: string(v), Codes: make([]int, g.config.Rows)}
		if g.config.MissingRate > 0 {
			col.Present = make([]bool, g.config.Rows)
		}
		columns[v] = col
	}

	// state index per variable for the current row
	current := make(map[network.Variable]int, len(variables))
	order := model.TopologicalOrder()
	for r := 0; r < g.config.Rows; r++ {
		for _, v := range order {
			c := truth[v]
			parentStates := make([]int, len(c.Parents))
			for i, p := range c.Parents {
				parentStates[i] = current[p]
			}
			j, err := c.ColumnIndex(parentStates...)
			if err != nil {
				return nil, err
			}
			s := g.draw(c.Column(j))
			current[v] = s
			columns[v].Codes[r] = c.States[v][s]
		}
		if g.config.MissingRate > 0 {
			for _, v := range variables {
				columns[v].Present[r] = g.rng.Float64() >= g.config.MissingRate
			}
		}
	}

	ordered := make([]*dataset.Column, len(variables))
	for i, v := range variables {
		ordered[i] = columns[v]
	}
	return dataset.NewTable(ordered)
}

func (g *SampleGenerator) draw(distribution []float64) int {
	u := g.rng.Float64()
	acc := 0.0
	for i, p := range distribution {
		acc += p
		if u < acc {
			return i
		}
	}
	return len(distribution) - 1
}

// MakeCPD builds a CPD from row-major probabilities (one row per state of v,
// one column per parent configuration, last parent fastest). States are coded
// 0..n-1 unless codes are supplied.
func MakeCPD(v network.Variable, parents []network.Variable, cardinality []int, rows [][]float64, codes map[network.Variable][]int) *cpd.CPD {
	cols := 1
	for _, n := range cardinality[1:] {
		cols *= n
	}
	data := make([]float64, 0, cardinality[0]*cols)
	for _, row := range rows {
		data = append(data, row...)
	}

	all := append([]network.Variable{v}, parents...)
	states := make(map[network.Variable][]int, len(all))
	names := make(map[network.Variable][]string, len(all))
	for i, u := range all {
		s, ok := codes[u]
		if !ok {
			s = make([]int, cardinality[i])
			for k := range s {
				s[k] = k
			}
		}
		states[u] = s
		names[u] = dataset.NewStateSpace(s).Labels()
	}

	return &cpd.CPD{
		Variable:    v,
		Parents:     parents,
		Cardinality: cardinality,
		States:      states,
		StateNames:  names,
		Values:      mat.NewDense(cardinality[0], cols, data),
		Provenance:  cpd.Provenance{Method: "ground_truth"},
	}
}
