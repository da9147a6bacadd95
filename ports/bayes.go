package ports

import (
	"context"

	"bayesview/domain/cpd"
	"bayesview/domain/dataset"
	"bayesview/domain/network"

	"gonum.org/v1/gonum/spatial/r2"
)

// StructureLoader turns a structure description into (parent, child) pairs
type StructureLoader interface {
	Load(ctx context.Context, path string) ([][]string, error)
}

// SampleSource supplies an already re-coded sample table
type SampleSource interface {
	Samples(ctx context.Context) (*dataset.Table, error)
}

// LayoutEngine places every variable of a model in 2-D
type LayoutEngine interface {
	Compute(model *network.Model) (*network.Layout, error)
}

// NodeResolver maps a layout-space point to the nearest variable.
// ResolveWithin reports ok=false when that variable is farther than
// sqrt(maxSquared) from point.
type NodeResolver interface {
	Resolve(point r2.Vec) (network.Variable, error)
	ResolveWithin(point r2.Vec, maxSquared float64) (v network.Variable, ok bool, err error)
}

// ParameterEstimator estimates one CPD per model variable
type ParameterEstimator interface {
	Estimate(ctx context.Context, model *network.Model, samples *dataset.Table) (*cpd.Estimation, error)
}

// TableFormatter renders a CPD as a labeled row/column table
type TableFormatter interface {
	Format(c *cpd.CPD, v network.Variable, stateNames map[network.Variable][]string) (*cpd.Table, error)
}
