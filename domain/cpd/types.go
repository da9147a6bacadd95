// Package cpd defines conditional probability distributions and the labeled
// tables they are rendered into.
package cpd

import (
	"fmt"
	"math"
	"reflect"

	"bayesview/domain/network"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Estimation methods and fallback policies recorded in provenance
const (
	MethodMaximumLikelihood = "maximum_likelihood"
	FallbackUniform         = "uniform"
)

// Provenance records how a CPD was produced
type Provenance struct {
	Method   string `json:"method"`
	Fallback string `json:"fallback"`
	// FallbackColumns lists parent configurations with no matching rows;
	// their columns hold the uniform distribution.
	FallbackColumns []int `json:"fallback_columns,omitempty"`
	// Rows counts sample rows where the variable and all its parents were observed
	Rows int `json:"rows"`
}

// CPD is P(Variable | Parents) stored as a |V| x prod(|Pi|) matrix. Column j
// enumerates parent configurations with the last parent varying fastest,
// which is the row-major flattening of the [|V|, |P1|, |P2|, ...] tensor.
type CPD struct {
	Variable    network.Variable              `json:"variable"`
	Parents     []network.Variable            `json:"parents"`
	Cardinality []int                         `json:"cardinality"`
	States      map[network.Variable][]int    `json:"states"`
	StateNames  map[network.Variable][]string `json:"state_names"`
	Values      *mat.Dense                    `json:"-"`
	Provenance  Provenance                    `json:"provenance"`
}

// Rank is the tensor rank: the variable's own axis plus one per parent
func (c *CPD) Rank() int { return 1 + len(c.Parents) }

// Shape returns the logical tensor shape
func (c *CPD) Shape() []int { return append([]int(nil), c.Cardinality...) }

// Configurations returns the number of parent-state configurations
func (c *CPD) Configurations() int {
	_, cols := c.Values.Dims()
	return cols
}

// ColumnIndex maps one state index per parent to its column
func (c *CPD) ColumnIndex(parentStates ...int) (int, error) {
	if len(parentStates) != len(c.Parents) {
		return 0, fmt.Errorf("cpd %s: got %d parent states, want %d", c.Variable, len(parentStates), len(c.Parents))
	}
	j := 0
	for i, s := range parentStates {
		card := c.Cardinality[i+1]
		if s < 0 || s >= card {
			return 0, fmt.Errorf("cpd %s: state %d out of range for parent %s", c.Variable, s, c.Parents[i])
		}
		j = j*card + s
	}
	return j, nil
}

// At returns P(Variable = state | parents = parentStates) by state index.
// It panics on out-of-range indices, matching mat.Dense.At.
func (c *CPD) At(state int, parentStates ...int) float64 {
	j, err := c.ColumnIndex(parentStates...)
	if err != nil {
		panic(err)
	}
	return c.Values.At(state, j)
}

// Column returns the distribution over the variable's states for configuration j
func (c *CPD) Column(j int) []float64 {
	rows, _ := c.Values.Dims()
	return mat.Col(make([]float64, rows), j, c.Values)
}

// CheckNormalized verifies every column sums to 1 within tol
func (c *CPD) CheckNormalized(tol float64) error {
	for j := 0; j < c.Configurations(); j++ {
		if sum := floats.Sum(c.Column(j)); math.Abs(sum-1) > tol {
			return fmt.Errorf("cpd %s: column %d sums to %v", c.Variable, j, sum)
		}
	}
	return nil
}

// Equal reports value equality; probabilities are compared within tol
func (c *CPD) Equal(o *CPD, tol float64) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Variable != o.Variable ||
		!reflect.DeepEqual(c.Parents, o.Parents) ||
		!reflect.DeepEqual(c.Cardinality, o.Cardinality) ||
		!reflect.DeepEqual(c.States, o.States) ||
		!reflect.DeepEqual(c.StateNames, o.StateNames) ||
		!reflect.DeepEqual(c.Provenance, o.Provenance) {
		return false
	}
	return mat.EqualApprox(c.Values, o.Values, tol)
}

// Table is a display-ready 2-D view of a CPD: Cells[i][j] is the probability
// of the i-th row state given the j-th column state.
type Table struct {
	Variable  network.Variable `json:"variable"`
	RowLabels []string         `json:"row_labels"`
	ColLabels []string         `json:"col_labels"`
	Cells     [][]float64      `json:"cells"`
}
