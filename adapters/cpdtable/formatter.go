// Package cpdtable flattens rank 1 and rank 2 CPDs into labeled tables.
package cpdtable

import (
	"strconv"

	"bayesview/domain/core"
	"bayesview/domain/cpd"
	"bayesview/domain/network"
)

// MaxRank is the highest CPD rank that fits a 2-D table
const MaxRank = 2

// Formatter implements ports.TableFormatter
type Formatter struct{}

// New creates a table formatter
func New() *Formatter { return &Formatter{} }

// Format builds the table for v. Labels concatenate the variable name with
// each state label ("gr" + "1" -> "gr1"); cell values are copied unrounded.
func (f *Formatter) Format(c *cpd.CPD, v network.Variable, stateNames map[network.Variable][]string) (*cpd.Table, error) {
	return Format(c, v, stateNames)
}

// Format is the stateless form of Formatter.Format
func Format(c *cpd.CPD, v network.Variable, stateNames map[network.Variable][]string) (*cpd.Table, error) {
	if c == nil || c.Values == nil {
		return nil, core.ErrNotTrained
	}
	if c.Variable != v {
		return nil, core.NewInvalidInputError("cpd is for %s, not %s", c.Variable, v)
	}
	if rank := c.Rank(); rank > MaxRank {
		return nil, core.NewUnsupportedRankError(string(v), rank)
	}

	rows, cols := c.Values.Dims()
	table := &cpd.Table{
		Variable:  v,
		RowLabels: labels(v, rows, c, stateNames),
		Cells:     make([][]float64, rows),
	}
	if len(c.Parents) == 0 {
		table.ColLabels = []string{"P(" + string(v) + ")"}
	} else {
		table.ColLabels = labels(c.Parents[0], cols, c, stateNames)
	}

	for i := range table.Cells {
		table.Cells[i] = make([]float64, cols)
		for j := range table.Cells[i] {
			table.Cells[i][j] = c.Values.At(i, j)
		}
	}
	return table, nil
}

// labels prefers the caller's names, then the CPD's own, then raw codes
func labels(v network.Variable, n int, c *cpd.CPD, stateNames map[network.Variable][]string) []string {
	names := stateNames[v]
	if len(names) < n {
		names = c.StateNames[v]
	}
	out := make([]string, n)
	for i := range out {
		state := strconv.Itoa(i)
		switch {
		case i < len(names):
			state = names[i]
		case i < len(c.States[v]):
			state = strconv.Itoa(c.States[v][i])
		}
		out[i] = string(v) + state
	}
	return out
}
