// Package layout computes 2-D coordinates for a structure model. Placement
// runs gonum's Eades force-directed optimizer once per seed and keeps the
// result with the fewest edge crossings.
package layout

import (
	"math"
	"math/rand/v2"

	"bayesview/domain/network"
	"bayesview/internal"

	gonumlayout "gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config tunes the force-directed search
type Config struct {
	Updates   int     // Eades iterations per attempt
	Repulsion float64 // node repulsion strength
	Rate      float64 // step size per iteration
	Theta     float64 // Barnes-Hut approximation threshold
	Attempts  int     // optimizer runs to try, each with its own seed
	Seed      int64   // run i draws from PCG(Seed, i)
}

// DefaultConfig returns settings suited to tens to low hundreds of nodes
func DefaultConfig() Config {
	return Config{
		Updates:   150,
		Repulsion: 1,
		Rate:      0.05,
		Theta:     0.2,
		Attempts:  6,
		Seed:      1,
	}
}

// Engine computes layouts; it holds no per-model state
type Engine struct {
	config Config
	logger *internal.Logger
}

// NewEngine creates a layout engine, filling zero config fields from defaults
func NewEngine(config Config) *Engine {
	def := DefaultConfig()
	if config.Updates <= 0 {
		config.Updates = def.Updates
	}
	if config.Repulsion <= 0 {
		config.Repulsion = def.Repulsion
	}
	if config.Rate <= 0 {
		config.Rate = def.Rate
	}
	if config.Theta <= 0 {
		config.Theta = def.Theta
	}
	if config.Attempts <= 0 {
		config.Attempts = def.Attempts
	}
	return &Engine{config: config, logger: internal.DefaultLogger.WithPrefix("layout")}
}

// Compute places every variable inside [-1, 1] on both axes. Identical models
// and configs produce identical layouts.
func (e *Engine) Compute(model *network.Model) (*network.Layout, error) {
	switch model.Len() {
	case 0:
		return network.NewLayout(), nil
	case 1:
		l := network.NewLayout()
		l.Set(model.Variables()[0], r2.Vec{})
		return l, nil
	}

	g := orderedGraph{model.Graph()}
	var best *network.Layout
	bestCrossings := math.MaxInt
	for attempt := 0; attempt < e.config.Attempts; attempt++ {
		coords := newCoordinates()

		// Src drives the optimizer's initial particle positions; without it
		// gonum draws them from the global source.
		eades := &gonumlayout.EadesR2{
			Repulsion: e.config.Repulsion,
			Rate:      e.config.Rate,
			Updates:   e.config.Updates,
			Theta:     e.config.Theta,
			Src:       rand.NewPCG(uint64(e.config.Seed), uint64(attempt)),
		}
		for eades.Update(g, coords) {
		}

		candidate := normalize(model, coords)
		crossings := Crossings(model, candidate)
		e.logger.Debug("attempt %d: %d crossings", attempt, crossings)

		if crossings < bestCrossings {
			best, bestCrossings = candidate, crossings
		}
		if crossings == 0 {
			break
		}
	}

	e.logger.Debug("layout of %d variables has %d crossings", model.Len(), bestCrossings)
	return best, nil
}

// normalize centres the bounding box on the origin and scales the largest
// half-extent to 1, preserving aspect ratio
func normalize(model *network.Model, coords *coordinates) *network.Layout {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range coords.pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	centre := r2.Vec{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
	half := math.Max(maxX-minX, maxY-minY) / 2

	l := network.NewLayout()
	for _, v := range model.Variables() {
		id, _ := model.ID(v)
		p := r2.Sub(coords.Coord2(id), centre)
		if half > 0 {
			p = r2.Scale(1/half, p)
		}
		l.Set(v, p)
	}
	return l
}

// coordinates implements gonum's LayoutR2. It is initialised once the
// optimizer has written its first positions back.
type coordinates struct {
	pos map[int64]r2.Vec
}

func newCoordinates() *coordinates {
	return &coordinates{pos: make(map[int64]r2.Vec)}
}

func (c *coordinates) IsInitialized() bool { return len(c.pos) > 0 }

func (c *coordinates) Coord2(id int64) r2.Vec { return c.pos[id] }

func (c *coordinates) SetCoord2(id int64, p r2.Vec) { c.pos[id] = p }
