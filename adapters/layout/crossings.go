package layout

import (
	"bayesview/domain/network"

	"gonum.org/v1/gonum/spatial/r2"
)

// Crossings counts pairs of edges whose straight segments intersect. Edges
// sharing an endpoint never count.
func Crossings(model *network.Model, l *network.Layout) int {
	type segment struct {
		from, to network.Variable
		a, b     r2.Vec
	}

	edges := model.Edges()
	segments := make([]segment, 0, len(edges))
	for _, e := range edges {
		a, okA := l.Position(e.Parent)
		b, okB := l.Position(e.Child)
		if !okA || !okB {
			continue
		}
		segments = append(segments, segment{from: e.Parent, to: e.Child, a: a, b: b})
	}

	n := 0
	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			s, t := segments[i], segments[j]
			if s.from == t.from || s.from == t.to || s.to == t.from || s.to == t.to {
				continue
			}
			if segmentsIntersect(s.a, s.b, t.a, t.b) {
				n++
			}
		}
	}
	return n
}

func orientation(a, b, c r2.Vec) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}

func onSegment(a, b, p r2.Vec) bool {
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

func segmentsIntersect(p1, p2, q1, q2 r2.Vec) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// collinear touching
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}
