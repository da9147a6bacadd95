package estimator

import (
	"context"
	"testing"

	"bayesview/domain/core"
	"bayesview/domain/cpd"
	"bayesview/domain/dataset"
	"bayesview/domain/network"
	"bayesview/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustModel(t *testing.T, edges [][]string) *network.Model {
	t.Helper()
	m, err := network.Build(edges)
	require.NoError(t, err)
	return m
}

func mustTable(t *testing.T, names []string, codes map[string][]int) *dataset.Table {
	t.Helper()
	table, err := dataset.FromColumns(names, codes)
	require.NoError(t, err)
	return table
}

func TestEstimate_MarginalFromCounts(t *testing.T) {
	// V has no parents; the extra edge only puts V into the model
	model := mustModel(t, [][]string{{"V", "W"}})
	table := mustTable(t, []string{"V", "W"}, map[string][]int{
		"V": {0, 0, 0, 1},
		"W": {0, 0, 0, 0},
	})

	est, err := New(2).Estimate(context.Background(), model, table)
	require.NoError(t, err)

	v := est.CPDs["V"]
	require.NotNil(t, v)
	assert.Equal(t, 1, v.Rank())
	assert.Equal(t, 0.75, v.At(0))
	assert.Equal(t, 0.25, v.At(1))
	assert.Equal(t, 4, v.Provenance.Rows)
	assert.Empty(t, v.Provenance.FallbackColumns)
}

func TestEstimate_DeterministicChild(t *testing.T) {
	model := mustModel(t, [][]string{{"V", "W"}})
	table := mustTable(t, []string{"V", "W"}, map[string][]int{
		"V": {0, 0, 1, 1, 0, 1},
		"W": {1, 1, 0, 0, 1, 0},
	})

	est, err := New(1).Estimate(context.Background(), model, table)
	require.NoError(t, err)

	w := est.CPDs["W"]
	require.NotNil(t, w)
	assert.Equal(t, []network.Variable{"V"}, w.Parents)
	assert.Equal(t, []int{2, 2}, w.Shape())
	assert.Equal(t, []float64{0, 1}, w.Column(0), "column V=0")
	assert.Equal(t, []float64{1, 0}, w.Column(1), "column V=1")
}

func TestEstimate_UnseenParentConfigurationIsUniform(t *testing.T) {
	model := mustModel(t, [][]string{{"A", "W"}, {"B", "W"}})
	// (A=1, B=1) never occurs
	table := mustTable(t, []string{"A", "B", "W"}, map[string][]int{
		"A": {0, 0, 1, 0, 1},
		"B": {0, 1, 0, 1, 0},
		"W": {0, 1, 1, 0, 0},
	})

	est, err := New(0).Estimate(context.Background(), model, table)
	require.NoError(t, err)

	w := est.CPDs["W"]
	require.NotNil(t, w)
	assert.Equal(t, []int{2, 2, 2}, w.Shape())

	j, err := w.ColumnIndex(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, w.Column(j))
	assert.Equal(t, []int{j}, w.Provenance.FallbackColumns)
	assert.Equal(t, cpd.FallbackUniform, w.Provenance.Fallback)

	assert.Equal(t, []float64{1, 0}, w.Column(0), "A=0,B=0")
	assert.Equal(t, []float64{0.5, 0.5}, w.Column(1), "A=0,B=1 observed twice, once each")
	assert.Equal(t, []float64{0.5, 0.5}, w.Column(2), "A=1,B=0")
	assert.NoError(t, w.CheckNormalized(1e-9))
}

func TestEstimate_StateSpacesFollowObservedCodes(t *testing.T) {
	model := mustModel(t, [][]string{{"ex", "gr"}})
	// codes shifted by a loader (+1) and sparse
	table := mustTable(t, []string{"ex", "gr"}, map[string][]int{
		"ex": {1, 2, 2, 1},
		"gr": {3, 7, 7, 3},
	})

	est, err := New(0).Estimate(context.Background(), model, table)
	require.NoError(t, err)

	gr := est.CPDs["gr"]
	assert.Equal(t, []int{3, 7}, gr.States["gr"])
	assert.Equal(t, []int{1, 2}, gr.States["ex"])
	assert.Equal(t, []string{"3", "7"}, gr.StateNames["gr"])
	assert.Equal(t, 1.0, gr.At(0, 0))
	assert.Equal(t, 1.0, gr.At(1, 1))
}

func TestEstimate_SkipsRowsWithMissingCells(t *testing.T) {
	model := mustModel(t, [][]string{{"V", "W"}})
	table, err := dataset.NewTable([]*dataset.Column{
		{Name: "V", Codes: []int{0, 0, 1, 1}, Present: []bool{true, true, true, false}},
		{Name: "W", Codes: []int{0, 1, 1, 0}, Present: []bool{true, false, true, true}},
	})
	require.NoError(t, err)

	est, err := New(0).Estimate(context.Background(), model, table)
	require.NoError(t, err)

	w := est.CPDs["W"]
	assert.Equal(t, 2, w.Provenance.Rows)
	assert.Equal(t, []float64{1, 0}, w.Column(0))
	assert.Equal(t, []float64{0, 1}, w.Column(1))
	assert.Equal(t, 3, est.CPDs["V"].Provenance.Rows)
}

func TestEstimate_ColumnErrors(t *testing.T) {
	model := mustModel(t, [][]string{{"V", "W"}})

	missing := mustTable(t, []string{"V"}, map[string][]int{"V": {0, 1}})
	_, err := New(0).Estimate(context.Background(), model, missing)
	assert.ErrorIs(t, err, core.ErrMissingColumn)
	assert.Contains(t, err.Error(), "W")

	blank, err := dataset.NewTable([]*dataset.Column{
		{Name: "V", Codes: []int{0, 1}},
		{Name: "W", Codes: []int{0, 0}, Present: []bool{false, false}},
	})
	require.NoError(t, err)
	_, err = New(0).Estimate(context.Background(), model, blank)
	assert.ErrorIs(t, err, core.ErrEmptyColumn)

	noRows := mustTable(t, []string{"V", "W"}, map[string][]int{"V": {}, "W": {}})
	_, err = New(0).Estimate(context.Background(), model, noRows)
	assert.ErrorIs(t, err, core.ErrEmptyColumn)
}

func TestEstimate_ColumnsSumToOne(t *testing.T) {
	model, truth, err := testkit.StudentNetwork()
	require.NoError(t, err)
	table, err := testkit.NewSampleGenerator(testkit.SampleGeneratorConfig{Rows: 400, Seed: 3, MissingRate: 0.05}).Generate(model, truth)
	require.NoError(t, err)

	est, err := New(4).Estimate(context.Background(), model, table)
	require.NoError(t, err)

	require.Len(t, est.CPDs, model.Len())
	for v, c := range est.CPDs {
		assert.NoError(t, c.CheckNormalized(1e-9), "variable %s", v)
		assert.Equal(t, model.ParentsOf(v), c.Parents)
	}
}

func TestEstimate_RecoversGroundTruth(t *testing.T) {
	model, truth, err := testkit.StudentNetwork()
	require.NoError(t, err)
	table, err := testkit.NewSampleGenerator(testkit.SampleGeneratorConfig{Rows: 20000, Seed: 11}).Generate(model, truth)
	require.NoError(t, err)

	est, err := New(0).Estimate(context.Background(), model, table)
	require.NoError(t, err)

	for v, want := range truth {
		got := est.CPDs[v]
		require.Equal(t, want.Shape(), got.Shape(), "variable %s", v)
		for j := 0; j < want.Configurations(); j++ {
			assert.InDeltaSlice(t, want.Column(j), got.Column(j), 0.05, "variable %s column %d", v, j)
		}
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	model, truth, err := testkit.StudentNetwork()
	require.NoError(t, err)
	table, err := testkit.NewSampleGenerator(testkit.SampleGeneratorConfig{Rows: 300, Seed: 5}).Generate(model, truth)
	require.NoError(t, err)
	before := table.Hash()

	estimator := New(3)
	first, err := estimator.Estimate(context.Background(), model, table)
	require.NoError(t, err)
	second, err := estimator.Estimate(context.Background(), model, table)
	require.NoError(t, err)

	assert.True(t, first.Equal(second, 0))
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Samples, second.Samples)
	assert.True(t, before.Equals(table.Hash()), "estimation must not mutate samples")
}

func TestEstimate_CancelledContext(t *testing.T) {
	model := mustModel(t, [][]string{{"V", "W"}})
	table := mustTable(t, []string{"V", "W"}, map[string][]int{"V": {0, 1}, "W": {1, 0}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(1).Estimate(ctx, model, table)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAttach_ReplacesPriorCPDs(t *testing.T) {
	model := mustModel(t, [][]string{{"V", "W"}})
	first := mustTable(t, []string{"V", "W"}, map[string][]int{"V": {0, 0}, "W": {0, 1}})
	second := mustTable(t, []string{"V", "W"}, map[string][]int{"V": {0, 1}, "W": {0, 1}})

	held := make(map[network.Variable]*cpd.CPD)

	est, err := New(0).Estimate(context.Background(), model, first)
	require.NoError(t, err)
	cpd.Attach(held, est)
	assert.Equal(t, 1, held["V"].Configurations())
	assert.Equal(t, []int{1}, held["V"].Shape())

	est, err = New(0).Estimate(context.Background(), model, second)
	require.NoError(t, err)
	cpd.Attach(held, est)
	assert.Len(t, held, 2)
	assert.Equal(t, []int{2}, held["V"].Shape())
	assert.Same(t, est.CPDs["W"], held["W"])
}
