// Package picker resolves a click coordinate to the nearest laid-out variable.
package picker

import (
	"bayesview/domain/core"
	"bayesview/domain/network"
	"bayesview/ports"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"
)

// KDTreeThreshold is the layout size from which NewResolver indexes with a k-d tree
const KDTreeThreshold = 64

// Resolve returns the variable nearest to point by squared Euclidean
// distance. Among equidistant variables the first in layout order wins.
func Resolve(l *network.Layout, point r2.Vec) (network.Variable, error) {
	v, _, err := nearest(l.Placements(), point)
	return v, err
}

// ResolveWithin is Resolve with a pick radius: ok is false when the nearest
// variable lies farther than sqrt(maxSquared) from point
func ResolveWithin(l *network.Layout, point r2.Vec, maxSquared float64) (network.Variable, bool, error) {
	v, d, err := nearest(l.Placements(), point)
	if err != nil {
		return "", false, err
	}
	if d > maxSquared {
		return "", false, nil
	}
	return v, true, nil
}

func nearest(placements []network.Placement, point r2.Vec) (network.Variable, float64, error) {
	if len(placements) == 0 {
		return "", 0, core.ErrEmptyLayout
	}

	best := placements[0].Variable
	bestDist := squaredDistance(placements[0].Point, point)
	for _, p := range placements[1:] {
		// only a strictly smaller distance replaces the current best
		if d := squaredDistance(p.Point, point); d < bestDist {
			best, bestDist = p.Variable, d
		}
	}
	return best, bestDist, nil
}

func squaredDistance(a, b r2.Vec) float64 {
	d := r2.Sub(a, b)
	return r2.Dot(d, d)
}

// LinearResolver binds Resolve to one layout
type LinearResolver struct {
	layout *network.Layout
}

// NewLinearResolver creates a resolver that scans every placement per click
func NewLinearResolver(l *network.Layout) *LinearResolver {
	return &LinearResolver{layout: l}
}

// Resolve implements ports.NodeResolver
func (r *LinearResolver) Resolve(point r2.Vec) (network.Variable, error) {
	return Resolve(r.layout, point)
}

// ResolveWithin implements ports.NodeResolver
func (r *LinearResolver) ResolveWithin(point r2.Vec, maxSquared float64) (network.Variable, bool, error) {
	return ResolveWithin(r.layout, point, maxSquared)
}

// KDResolver answers nearest-node queries from a k-d tree built once per layout
type KDResolver struct {
	tree  *kdtree.Tree
	first map[[2]float64]int
	order []network.Variable
}

// NewKDResolver indexes the layout. Variables sharing a coordinate collapse to
// the first in layout order.
func NewKDResolver(l *network.Layout) *KDResolver {
	placements := l.Placements()
	r := &KDResolver{
		first: make(map[[2]float64]int, len(placements)),
		order: make([]network.Variable, len(placements)),
	}

	points := make(kdtree.Points, 0, len(placements))
	for i, p := range placements {
		r.order[i] = p.Variable
		key := [2]float64{p.Point.X, p.Point.Y}
		if _, dup := r.first[key]; dup {
			continue
		}
		r.first[key] = i
		points = append(points, kdtree.Point{p.Point.X, p.Point.Y})
	}
	if len(points) > 0 {
		r.tree = kdtree.New(points, false)
	}
	return r
}

// Resolve implements ports.NodeResolver with the same tie-break as the linear
// scan: every point at the minimum distance is collected and the earliest in
// layout order wins.
func (r *KDResolver) Resolve(point r2.Vec) (network.Variable, error) {
	v, _, err := r.nearest(point)
	return v, err
}

// ResolveWithin implements ports.NodeResolver
func (r *KDResolver) ResolveWithin(point r2.Vec, maxSquared float64) (network.Variable, bool, error) {
	v, d, err := r.nearest(point)
	if err != nil {
		return "", false, err
	}
	if d > maxSquared {
		return "", false, nil
	}
	return v, true, nil
}

// nearest returns the winning variable and its squared distance; kdtree.Point
// distances are already squared.
func (r *KDResolver) nearest(point r2.Vec) (network.Variable, float64, error) {
	if r.tree == nil {
		return "", 0, core.ErrEmptyLayout
	}

	q := kdtree.Point{point.X, point.Y}
	_, minDist := r.tree.Nearest(q)

	keeper := kdtree.NewDistKeeper(minDist)
	r.tree.NearestSet(keeper, q)

	best := -1
	for _, cd := range keeper.Heap {
		p, ok := cd.Comparable.(kdtree.Point)
		if !ok {
			continue
		}
		i := r.first[[2]float64{p[0], p[1]}]
		if best < 0 || i < best {
			best = i
		}
	}
	if best < 0 {
		return "", 0, core.ErrEmptyLayout
	}
	return r.order[best], minDist, nil
}

// NewResolver picks a linear scan for small layouts and a k-d tree otherwise
func NewResolver(l *network.Layout) ports.NodeResolver {
	if l.Len() >= KDTreeThreshold {
		return NewKDResolver(l)
	}
	return NewLinearResolver(l)
}
