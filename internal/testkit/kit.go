// Package testkit provides known networks and seeded synthetic samples for
// tests and demo data.
package testkit

import (
	"bayesview/domain/cpd"
	"bayesview/domain/network"
)

// StudentEdges is the structure of the demo network: exam difficulty (ex) and
// student aptitude (su) drive the grade (gr); aptitude drives the score (sc);
// the grade drives the recommendation letter (le).
var StudentEdges = [][]string{
	{"ex", "gr"},
	{"su", "gr"},
	{"su", "sc"},
	{"gr", "le"},
}

// StudentNetwork returns the demo model together with its true CPDs
func StudentNetwork() (*network.Model, map[network.Variable]*cpd.CPD, error) {
	model, err := network.Build(StudentEdges)
	if err != nil {
		return nil, nil, err
	}

	truth := map[network.Variable]*cpd.CPD{
		"ex": MakeCPD("ex", nil, []int{2}, [][]float64{{0.6}, {0.4}}, nil),
		"su": MakeCPD("su", nil, []int{2}, [][]float64{{0.7}, {0.3}}, nil),
		"gr": MakeCPD("gr", []network.Variable{"ex", "su"}, []int{3, 2, 2}, [][]float64{
			{0.3, 0.9, 0.05, 0.5},
			{0.4, 0.08, 0.25, 0.3},
			{0.3, 0.02, 0.7, 0.2},
		}, nil),
		"sc": MakeCPD("sc", []network.Variable{"su"}, []int{2, 2}, [][]float64{
			{0.95, 0.2},
			{0.05, 0.8},
		}, nil),
		"le": MakeCPD("le", []network.Variable{"gr"}, []int{2, 3}, [][]float64{
			{0.1, 0.4, 0.99},
			{0.9, 0.6, 0.01},
		}, nil),
	}
	return model, truth, nil
}
