package cpd

import (
	"bayesview/domain/core"
	"bayesview/domain/network"
)

// Estimation is the outcome of one estimator run. RunID and EstimatedAt
// identify the run; CPDs carry only deterministic values.
type Estimation struct {
	RunID       core.RunID                `json:"run_id"`
	EstimatedAt core.Timestamp            `json:"estimated_at"`
	Samples     core.SampleHash           `json:"samples"`
	Structure   core.StructureHash        `json:"structure"`
	CPDs        map[network.Variable]*CPD `json:"cpds"`
}

// Get returns the CPD estimated for v
func (e *Estimation) Get(v network.Variable) (*CPD, error) {
	if e == nil {
		return nil, core.ErrNotTrained
	}
	c, ok := e.CPDs[v]
	if !ok {
		return nil, core.ErrNotTrained
	}
	return c, nil
}

// Equal compares the CPD maps of two estimations, ignoring run identity
func (e *Estimation) Equal(o *Estimation, tol float64) bool {
	if e == nil || o == nil {
		return e == o
	}
	if len(e.CPDs) != len(o.CPDs) {
		return false
	}
	for v, c := range e.CPDs {
		if !c.Equal(o.CPDs[v], tol) {
			return false
		}
	}
	return true
}

// Attach copies est's CPDs into dst, replacing any CPD already held for the
// same variable
func Attach(dst map[network.Variable]*CPD, est *Estimation) {
	for v, c := range est.CPDs {
		dst[v] = c
	}
}
