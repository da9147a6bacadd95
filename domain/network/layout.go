package network

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Placement is one variable's coordinate in a Layout
type Placement struct {
	Variable Variable `json:"variable"`
	Point    r2.Vec   `json:"point"`
}

// Layout maps variables to 2-D coordinates. Iteration order is the order in
// which placements were added.
type Layout struct {
	placements []Placement
	index      map[Variable]int
}

// NewLayout creates an empty layout
func NewLayout() *Layout {
	return &Layout{index: make(map[Variable]int)}
}

// Set places v at p, keeping v's original position in iteration order
func (l *Layout) Set(v Variable, p r2.Vec) {
	if i, ok := l.index[v]; ok {
		l.placements[i].Point = p
		return
	}
	l.index[v] = len(l.placements)
	l.placements = append(l.placements, Placement{Variable: v, Point: p})
}

// Position returns v's coordinate
func (l *Layout) Position(v Variable) (r2.Vec, bool) {
	i, ok := l.index[v]
	if !ok {
		return r2.Vec{}, false
	}
	return l.placements[i].Point, true
}

// Placements returns the placements in iteration order
func (l *Layout) Placements() []Placement {
	return append([]Placement(nil), l.placements...)
}

// Len returns the number of placed variables
func (l *Layout) Len() int { return len(l.placements) }
