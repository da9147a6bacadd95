// Package estimator computes maximum-likelihood CPDs from discrete samples.
package estimator

import (
	"context"
	"runtime"
	"sort"

	"bayesview/domain/core"
	"bayesview/domain/cpd"
	"bayesview/domain/dataset"
	"bayesview/domain/network"
	"bayesview/internal"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"
)

// MaximumLikelihood estimates each variable's CPD by normalised frequency
// counts grouped by parent-state configuration
type MaximumLikelihood struct {
	workers int
	logger  *internal.Logger
}

// New creates an estimator running at most workers variables concurrently.
// workers <= 0 uses GOMAXPROCS.
func New(workers int) *MaximumLikelihood {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &MaximumLikelihood{workers: workers, logger: internal.DefaultLogger.WithPrefix("estimator")}
}

// Estimate returns one CPD per model variable. The sample table is only read.
func (e *MaximumLikelihood) Estimate(ctx context.Context, model *network.Model, samples *dataset.Table) (*cpd.Estimation, error) {
	variables := model.Variables()

	spaces := make(map[network.Variable]dataset.StateSpace, len(variables))
	for _, v := range variables {
		col, ok := samples.Column(string(v))
		if !ok {
			return nil, core.NewMissingColumnError(string(v))
		}
		if col.Usable() == 0 {
			return nil, core.NewEmptyColumnError(string(v))
		}
		spaces[v] = dataset.StateSpaceOf(col)
	}

	// each goroutine owns exactly one slot; the map is built after Wait
	results := make([]*cpd.CPD, len(variables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, v := range variables {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.estimateOne(v, model.ParentsOf(v), samples, spaces)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	est := &cpd.Estimation{
		RunID:       core.NewRunID(),
		EstimatedAt: core.Now(),
		Samples:     samples.Hash(),
		Structure:   model.Hash(),
		CPDs:        make(map[network.Variable]*cpd.CPD, len(variables)),
	}
	for i, v := range variables {
		est.CPDs[v] = results[i]
	}

	e.logger.Info("estimated %d CPDs from %d rows (run %s)", len(variables), samples.Rows(), est.RunID)
	return est, nil
}

func (e *MaximumLikelihood) estimateOne(v network.Variable, parents []network.Variable, samples *dataset.Table, spaces map[network.Variable]dataset.StateSpace) *cpd.CPD {
	own := spaces[v]
	child, _ := samples.Column(string(v))

	lens := make([]int, len(parents))
	parentCols := make([]*dataset.Column, len(parents))
	cardinality := []int{own.Len()}
	configurations := 1
	for i, p := range parents {
		lens[i] = spaces[p].Len()
		parentCols[i], _ = samples.Column(string(p))
		cardinality = append(cardinality, lens[i])
		configurations *= lens[i]
	}

	counts := mat.NewDense(own.Len(), configurations, nil)
	rows := 0
row:
	for r := 0; r < samples.Rows(); r++ {
		if !child.Observed(r) {
			continue
		}
		j := 0
		for i, pc := range parentCols {
			if !pc.Observed(r) {
				continue row
			}
			s, _ := spaces[parents[i]].Index(pc.Codes[r])
			j = j*lens[i] + s
		}
		s, _ := own.Index(child.Codes[r])
		counts.Set(s, j, counts.At(s, j)+1)
		rows++
	}

	combos := [][]int{{}}
	if len(parents) > 0 {
		combos = combin.Cartesian(lens)
	}

	var fallback []int
	column := make([]float64, own.Len())
	for _, combo := range combos {
		j := columnIndex(combo, lens)
		mat.Col(column, j, counts)

		total := floats.Sum(column)
		if total == 0 {
			// unseen parent configuration: uniform over the variable's states
			for i := range column {
				column[i] = 1 / float64(own.Len())
			}
			fallback = append(fallback, j)
			e.logger.Debug("%s: no rows for parent states %v, using uniform column", v, stateCodes(combo, parents, spaces))
		} else {
			floats.Scale(1/total, column)
		}
		counts.SetCol(j, column)
	}
	sort.Ints(fallback)

	states := map[network.Variable][]int{v: append([]int(nil), own.Codes...)}
	names := map[network.Variable][]string{v: own.Labels()}
	for _, p := range parents {
		states[p] = append([]int(nil), spaces[p].Codes...)
		names[p] = spaces[p].Labels()
	}

	return &cpd.CPD{
		Variable:    v,
		Parents:     parents,
		Cardinality: cardinality,
		States:      states,
		StateNames:  names,
		Values:      counts,
		Provenance: cpd.Provenance{
			Method:          cpd.MethodMaximumLikelihood,
			Fallback:        cpd.FallbackUniform,
			FallbackColumns: fallback,
			Rows:            rows,
		},
	}
}

// columnIndex flattens one state index per parent, last parent fastest
func columnIndex(combo, lens []int) int {
	j := 0
	for i, s := range combo {
		j = j*lens[i] + s
	}
	return j
}

func stateCodes(combo []int, parents []network.Variable, spaces map[network.Variable]dataset.StateSpace) map[network.Variable]int {
	codes := make(map[network.Variable]int, len(combo))
	for i, s := range combo {
		codes[parents[i]] = spaces[parents[i]].Codes[s]
	}
	return codes
}
