// Package dataset defines the discrete sample table consumed by parameter
// estimation and the per-variable state spaces derived from it.
package dataset

import (
	"fmt"
	"sort"

	"bayesview/domain/core"
)

// Column is one variable's integer-coded observations. Present marks observed
// cells; a nil Present means every cell is observed.
type Column struct {
	Name    string
	Codes   []int
	Present []bool
}

// Observed reports whether row i holds a value
func (c *Column) Observed(i int) bool {
	return c.Present == nil || c.Present[i]
}

// Usable counts observed cells
func (c *Column) Usable() int {
	if c.Present == nil {
		return len(c.Codes)
	}
	n := 0
	for _, ok := range c.Present {
		if ok {
			n++
		}
	}
	return n
}

// Table is a rectangular sample dataset, one row per observation
type Table struct {
	columns []*Column
	byName  map[string]*Column
	rows    int
}

// NewTable validates that every column has the same row count and a unique name
func NewTable(columns []*Column) (*Table, error) {
	t := &Table{byName: make(map[string]*Column, len(columns))}
	for i, col := range columns {
		if col == nil || col.Name == "" {
			return nil, core.NewInvalidInputError("column %d has no name", i)
		}
		if _, dup := t.byName[col.Name]; dup {
			return nil, core.NewInvalidInputError("duplicate column %q", col.Name)
		}
		if col.Present != nil && len(col.Present) != len(col.Codes) {
			return nil, core.NewInvalidInputError("column %q has %d codes but %d presence flags", col.Name, len(col.Codes), len(col.Present))
		}
		if i == 0 {
			t.rows = len(col.Codes)
		} else if len(col.Codes) != t.rows {
			return nil, core.NewInvalidInputError("column %q has %d rows, expected %d", col.Name, len(col.Codes), t.rows)
		}
		t.columns = append(t.columns, col)
		t.byName[col.Name] = col
	}
	return t, nil
}

// FromColumns builds a fully observed table from name -> codes, ordered by names
func FromColumns(names []string, codes map[string][]int) (*Table, error) {
	columns := make([]*Column, 0, len(names))
	for _, name := range names {
		values, ok := codes[name]
		if !ok {
			return nil, core.NewInvalidInputError("no codes for column %q", name)
		}
		columns = append(columns, &Column{Name: name, Codes: append([]int(nil), values...)})
	}
	return NewTable(columns)
}

// Rows returns the number of observations
func (t *Table) Rows() int { return t.rows }

// Names returns column names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by variable name
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Columns returns the columns in table order
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

// Hash fingerprints the observed codes; missing cells hash as their raw code
func (t *Table) Hash() core.SampleHash {
	codes := make(map[string][]int, len(t.columns))
	for _, c := range t.columns {
		codes[c.Name] = c.Codes
	}
	return core.ComputeSampleHash(t.Names(), codes)
}

// StateSpace is the sorted set of distinct codes observed for one variable
type StateSpace struct {
	Codes []int
	index map[int]int
}

// NewStateSpace builds a state space from arbitrary codes
func NewStateSpace(codes []int) StateSpace {
	seen := make(map[int]bool, len(codes))
	distinct := make([]int, 0, len(codes))
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			distinct = append(distinct, c)
		}
	}
	sort.Ints(distinct)

	index := make(map[int]int, len(distinct))
	for i, c := range distinct {
		index[c] = i
	}
	return StateSpace{Codes: distinct, index: index}
}

// StateSpaceOf derives the state space of a column, ignoring missing cells
func StateSpaceOf(c *Column) StateSpace {
	if c.Present == nil {
		return NewStateSpace(c.Codes)
	}
	observed := make([]int, 0, len(c.Codes))
	for i, code := range c.Codes {
		if c.Present[i] {
			observed = append(observed, code)
		}
	}
	return NewStateSpace(observed)
}

// Len returns the number of states
func (s StateSpace) Len() int { return len(s.Codes) }

// Index returns the position of code within the state space
func (s StateSpace) Index(code int) (int, bool) {
	i, ok := s.index[code]
	return i, ok
}

// Labels renders each code as a decimal label
func (s StateSpace) Labels() []string {
	labels := make([]string, len(s.Codes))
	for i, c := range s.Codes {
		labels[i] = fmt.Sprintf("%d", c)
	}
	return labels
}

// ColumnProfile summarises one column for the describe surface
type ColumnProfile struct {
	Name    string
	Rows    int
	Missing int
	States  []int
	Counts  []int
	Min     float64
	Max     float64
	Mode    []float64
}
