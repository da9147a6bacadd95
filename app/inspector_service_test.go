package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bayesview/adapters/cpdtable"
	"bayesview/adapters/estimator"
	"bayesview/adapters/layout"
	"bayesview/adapters/picker"
	"bayesview/adapters/samples"
	"bayesview/adapters/structure"
	"bayesview/domain/core"
	"bayesview/domain/cpd"
	"bayesview/domain/dataset"
	"bayesview/domain/network"
	"bayesview/internal/testkit"
	"bayesview/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func newService() *InspectorService {
	return NewInspectorService(
		structure.NewLoader(),
		layout.NewEngine(layout.DefaultConfig()),
		estimator.New(2),
		cpdtable.New(),
		picker.NewResolver,
	)
}

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	structurePath := filepath.Join(dir, "model_struct.txt")
	require.NoError(t, os.WriteFile(structurePath, []byte("[('V', 'W'), ('U', 'W')]"), 0o644))
	samplesPath := filepath.Join(dir, "samples.tsv")
	require.NoError(t, os.WriteFile(samplesPath, []byte("V\tU\tW\n0\t0\t1\n0\t1\t1\n1\t0\t0\n1\t0\t0\n"), 0o644))
	return structurePath, samplesPath
}

func TestInspector_EndToEnd(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	structurePath, samplesPath := writeFixtures(t)

	model, err := svc.LoadStructure(ctx, structurePath)
	require.NoError(t, err)
	assert.Equal(t, []network.Variable{"V", "U"}, model.ParentsOf("W"))

	table, err := svc.LoadSamples(ctx, samples.NewFileSource(samplesPath, samples.Options{}))
	require.NoError(t, err)

	l, err := svc.Draw(model)
	require.NoError(t, err)
	require.Equal(t, model.Len(), l.Len())

	_, _, err = svc.Click(l, nil, r2.Vec{})
	assert.ErrorIs(t, err, core.ErrNotTrained)

	est, err := svc.Train(ctx, model, table)
	require.NoError(t, err)

	vPos, ok := l.Position("V")
	require.True(t, ok)
	focus, vt, err := svc.Click(l, est, vPos)
	require.NoError(t, err)
	assert.Equal(t, network.Variable("V"), focus.Variable)
	assert.Equal(t, []string{"V0", "V1"}, vt.RowLabels)
	assert.Equal(t, []string{"P(V)"}, vt.ColLabels)
	assert.Equal(t, [][]float64{{0.5}, {0.5}}, vt.Cells)

	wPos, _ := l.Position("W")
	focus, wt, err := svc.Click(l, est, wPos)
	assert.ErrorIs(t, err, core.ErrUnsupportedRank)
	assert.Equal(t, network.Variable("W"), focus.Variable, "rank 3 variables still take focus")
	assert.Nil(t, wt)
}

func TestInspector_ClickIsStable(t *testing.T) {
	svc := newService()
	model, err := network.Build([][]string{{"a", "b"}})
	require.NoError(t, err)
	table, err := dataset.FromColumns([]string{"a", "b"}, map[string][]int{"a": {0, 1}, "b": {1, 0}})
	require.NoError(t, err)
	est, err := svc.Train(context.Background(), model, table)
	require.NoError(t, err)

	l := network.NewLayout()
	l.Set("a", r2.Vec{X: 0, Y: 0})
	l.Set("b", r2.Vec{X: 10, Y: 10})

	focus, _, err := svc.Click(l, est, r2.Vec{X: 1, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, network.Variable("a"), focus.Variable)

	for i := 0; i < 5; i++ {
		focus, bt, err := svc.Click(l, est, r2.Vec{X: 5, Y: 5})
		require.NoError(t, err)
		assert.Equal(t, network.Variable("a"), focus.Variable, "ties go to the first placement")
		assert.Equal(t, []string{"P(a)"}, bt.ColLabels)
	}

	_, _, err = svc.Click(network.NewLayout(), est, r2.Vec{})
	assert.ErrorIs(t, err, core.ErrEmptyLayout)
}

func trainedPair(t *testing.T, svc *InspectorService) (*network.Layout, *cpd.Estimation) {
	t.Helper()
	model, err := network.Build([][]string{{"a", "b"}})
	require.NoError(t, err)
	table, err := dataset.FromColumns([]string{"a", "b"}, map[string][]int{"a": {0, 1}, "b": {1, 0}})
	require.NoError(t, err)
	est, err := svc.Train(context.Background(), model, table)
	require.NoError(t, err)

	l := network.NewLayout()
	l.Set("a", r2.Vec{X: 0, Y: 0})
	l.Set("b", r2.Vec{X: 10, Y: 10})
	return l, est
}

func TestInspector_PickRadius(t *testing.T) {
	svc := newService().WithPickRadius(2)
	l, est := trainedPair(t, svc)

	focus, table, err := svc.Click(l, est, r2.Vec{X: 1, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, network.Variable("a"), focus.Variable)
	assert.NotNil(t, table)

	focus, table, err = svc.Click(l, est, r2.Vec{X: 5, Y: 5})
	require.NoError(t, err, "a miss is not an error")
	assert.True(t, focus.IsZero())
	assert.Nil(t, table)

	_, _, err = svc.Click(network.NewLayout(), est, r2.Vec{})
	assert.ErrorIs(t, err, core.ErrEmptyLayout)
}

func TestInspector_ClickWithReusesResolver(t *testing.T) {
	built := 0
	svc := NewInspectorService(
		structure.NewLoader(),
		layout.NewEngine(layout.DefaultConfig()),
		estimator.New(2),
		cpdtable.New(),
		func(l *network.Layout) ports.NodeResolver {
			built++
			return picker.NewResolver(l)
		},
	)
	l, est := trainedPair(t, svc)

	resolver := svc.Picker(l)
	for _, p := range []r2.Vec{{X: 1, Y: 1}, {X: 9, Y: 9}, {X: 0, Y: 1}} {
		_, _, err := svc.ClickWith(resolver, est, p)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, built)

	focus, _, err := svc.ClickWith(resolver, est, r2.Vec{X: 9, Y: 9})
	require.NoError(t, err)
	assert.Equal(t, network.Variable("b"), focus.Variable)

	_, _, err = svc.ClickWith(resolver, nil, r2.Vec{})
	assert.ErrorIs(t, err, core.ErrNotTrained)
}

func TestInspector_Tables(t *testing.T) {
	svc := newService()
	model, truth, err := testkit.StudentNetwork()
	require.NoError(t, err)
	table, err := testkit.NewSampleGenerator(testkit.SampleGeneratorConfig{Rows: 500, Seed: 7}).Generate(model, truth)
	require.NoError(t, err)

	est, err := svc.Train(context.Background(), model, table)
	require.NoError(t, err)

	tables, err := svc.Tables(model, est)
	require.NoError(t, err)
	require.Len(t, tables, model.Len())
	for _, vt := range tables {
		if vt.Variable == "gr" {
			assert.ErrorIs(t, vt.Err, core.ErrUnsupportedRank)
			assert.Nil(t, vt.Table)
			assert.Equal(t, []network.Variable{"ex", "su"}, vt.Parents)
			continue
		}
		require.NoError(t, vt.Err, "variable %s", vt.Variable)
		assert.Len(t, vt.Table.RowLabels, len(est.CPDs[vt.Variable].States[vt.Variable]))
	}

	_, err = svc.Tables(model, nil)
	assert.ErrorIs(t, err, core.ErrNotTrained)
}

func TestInspector_LoadErrors(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	dir := t.TempDir()

	cyclic := filepath.Join(dir, "cyclic.json")
	require.NoError(t, os.WriteFile(cyclic, []byte(`[["A","B"],["B","A"]]`), 0o644))
	_, err := svc.LoadStructure(ctx, cyclic)
	assert.ErrorIs(t, err, core.ErrCyclicGraph)

	model, err := network.Build([][]string{{"V", "W"}})
	require.NoError(t, err)
	samplesPath := filepath.Join(dir, "samples.csv")
	require.NoError(t, os.WriteFile(samplesPath, []byte("V\n0\n1\n"), 0o644))
	table, err := svc.LoadSamples(ctx, samples.NewFileSource(samplesPath, samples.Options{}))
	require.NoError(t, err)

	_, err = svc.Train(ctx, model, table)
	assert.ErrorIs(t, err, core.ErrMissingColumn)
}
