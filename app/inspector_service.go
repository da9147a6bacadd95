package app

import (
	"context"
	"errors"
	"fmt"

	"bayesview/domain/core"
	"bayesview/domain/cpd"
	"bayesview/domain/dataset"
	"bayesview/domain/network"
	"bayesview/internal"
	"bayesview/ports"

	"gonum.org/v1/gonum/spatial/r2"
)

// Focus is the variable selected by a click. The zero value means nothing is
// selected.
type Focus struct {
	Variable network.Variable
	Point    r2.Vec
}

// IsZero reports whether no variable is focused
func (f Focus) IsZero() bool { return f.Variable == "" }

// VariableTable is one variable's rendered CPD, or the reason it has none
type VariableTable struct {
	Variable network.Variable
	Parents  []network.Variable
	Table    *cpd.Table
	Err      error
}

// ResolverFactory builds a node resolver over a finished layout
type ResolverFactory func(l *network.Layout) ports.NodeResolver

// InspectorService wires loading, layout, estimation and table rendering.
// It holds no session state: models, layouts and estimations are passed in
// and returned explicitly.
type InspectorService struct {
	structures ports.StructureLoader
	layouts    ports.LayoutEngine
	estimator  ports.ParameterEstimator
	formatter  ports.TableFormatter
	resolvers  ResolverFactory
	pickRadius float64
	logger     *internal.Logger
}

func NewInspectorService(
	structures ports.StructureLoader,
	layouts ports.LayoutEngine,
	estimator ports.ParameterEstimator,
	formatter ports.TableFormatter,
	resolvers ResolverFactory,
) *InspectorService {
	return &InspectorService{
		structures: structures,
		layouts:    layouts,
		estimator:  estimator,
		formatter:  formatter,
		resolvers:  resolvers,
		logger:     internal.DefaultLogger.WithPrefix("inspector"),
	}
}

// WithPickRadius limits clicks to variables within radius layout units of
// the click point. Zero or less means any distance.
func (s *InspectorService) WithPickRadius(radius float64) *InspectorService {
	s.pickRadius = radius
	return s
}

// LoadStructure reads an edge list and builds the model
func (s *InspectorService) LoadStructure(ctx context.Context, path string) (*network.Model, error) {
	edges, err := s.structures.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	model, err := network.Build(edges)
	if err != nil {
		return nil, fmt.Errorf("invalid structure in %s: %w", path, err)
	}
	s.logger.Info("structure has %d variables and %d edges", model.Len(), len(model.Edges()))
	return model, nil
}

// LoadSamples reads a sample table from source
func (s *InspectorService) LoadSamples(ctx context.Context, source ports.SampleSource) (*dataset.Table, error) {
	table, err := source.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	return table, nil
}

// Draw computes a fresh layout for model
func (s *InspectorService) Draw(model *network.Model) (*network.Layout, error) {
	return s.layouts.Compute(model)
}

// Train estimates a CPD for every variable of model
func (s *InspectorService) Train(ctx context.Context, model *network.Model, samples *dataset.Table) (*cpd.Estimation, error) {
	est, err := s.estimator.Estimate(ctx, model, samples)
	if err != nil {
		return nil, fmt.Errorf("estimation failed: %w", err)
	}
	return est, nil
}

// Picker builds the node resolver for l. Callers that click the same layout
// repeatedly build it once and pass it to ClickWith.
func (s *InspectorService) Picker(l *network.Layout) ports.NodeResolver {
	return s.resolvers(l)
}

// Click resolves point against l and renders the focused CPD. See ClickWith.
func (s *InspectorService) Click(l *network.Layout, est *cpd.Estimation, point r2.Vec) (Focus, *cpd.Table, error) {
	if est == nil {
		return Focus{}, nil, core.ErrNotTrained
	}
	return s.ClickWith(s.Picker(l), est, point)
}

// ClickWith resolves point to the nearest variable and renders its CPD. A
// click with no variable inside the pick radius returns a zero Focus and no
// error. A variable whose CPD cannot be tabulated still becomes the focus;
// the returned error then wraps core.ErrUnsupportedRank.
func (s *InspectorService) ClickWith(resolver ports.NodeResolver, est *cpd.Estimation, point r2.Vec) (Focus, *cpd.Table, error) {
	if est == nil {
		return Focus{}, nil, core.ErrNotTrained
	}

	var v network.Variable
	if s.pickRadius > 0 {
		hit, ok, err := resolver.ResolveWithin(point, s.pickRadius*s.pickRadius)
		if err != nil {
			return Focus{}, nil, err
		}
		if !ok {
			s.logger.Debug("click at (%.3f, %.3f) is outside the pick radius", point.X, point.Y)
			return Focus{}, nil, nil
		}
		v = hit
	} else {
		hit, err := resolver.Resolve(point)
		if err != nil {
			return Focus{}, nil, err
		}
		v = hit
	}
	focus := Focus{Variable: v, Point: point}
	s.logger.Debug("click at (%.3f, %.3f) focused %s", point.X, point.Y, v)

	table, err := s.Table(est, v)
	if err != nil {
		return focus, nil, err
	}
	return focus, table, nil
}

// Table renders the CPD estimated for v
func (s *InspectorService) Table(est *cpd.Estimation, v network.Variable) (*cpd.Table, error) {
	c, err := est.Get(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", v, err)
	}
	return s.formatter.Format(c, v, c.StateNames)
}

// Tables renders every variable in model order. Variables whose CPD has
// rank > 2 carry the rank error instead of a table; any other failure stops.
func (s *InspectorService) Tables(model *network.Model, est *cpd.Estimation) ([]VariableTable, error) {
	out := make([]VariableTable, 0, model.Len())
	for _, v := range model.Variables() {
		table, err := s.Table(est, v)
		if err != nil && !errors.Is(err, core.ErrUnsupportedRank) {
			return nil, err
		}
		out = append(out, VariableTable{Variable: v, Parents: model.ParentsOf(v), Table: table, Err: err})
	}
	return out, nil
}
