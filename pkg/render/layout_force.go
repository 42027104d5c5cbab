package render

import (
	"math"
	"math/rand"

	"github.com/softloud/sig-vis/pkg/assembly"
)

// ForceDirectedLayout implements force-directed graph layout
type ForceDirectedLayout struct {
	config *LayoutConfig
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(config *LayoutConfig) *ForceDirectedLayout {
	if config.Iterations == 0 {
		config.Iterations = 50
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &ForceDirectedLayout{config: config}
}

// ComputeLayout computes positions using force-directed algorithm.
// Placement is seeded, so the same graph always lays out the same way.
func (fdl *ForceDirectedLayout) ComputeLayout(g *assembly.Graph) (map[string]Position, error) {
	names := vertexNames(g)
	if len(names) == 0 {
		return make(map[string]Position), nil
	}

	// Single vertex - center it
	if len(names) == 1 {
		return map[string]Position{
			names[0]: {
				X: fdl.config.Width / 2,
				Y: fdl.config.Height / 2,
			},
		}, nil
	}

	seed := fdl.config.Seed
	if seed == 0 {
		seed = 1
	}
	rng := rand.New(rand.NewSource(seed))

	// Initialize random positions
	positions := make(map[string]Position)
	for _, name := range names {
		positions[name] = Position{
			X: rng.Float64()*(fdl.config.Width-2*fdl.config.Padding) + fdl.config.Padding,
			Y: rng.Float64()*(fdl.config.Height-2*fdl.config.Padding) + fdl.config.Padding,
		}
	}

	// Build neighbour map for fast lookup
	neighbours := make(map[string]map[string]bool)
	for _, name := range names {
		neighbours[name] = make(map[string]bool)
	}
	for _, edge := range g.Edges {
		neighbours[edge.From][edge.To] = true
		neighbours[edge.To][edge.From] = true
	}

	// Force-directed iterations
	k := math.Sqrt((fdl.config.Width * fdl.config.Height) / float64(len(names))) // Optimal distance
	temperature := fdl.config.Width / 10.0

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		forces := make(map[string]Position)
		for _, name := range names {
			forces[name] = Position{X: 0, Y: 0}
		}

		// Repulsion between all vertices
		for i, name1 := range names {
			for j := i + 1; j < len(names); j++ {
				name2 := names[j]
				dx := positions[name1].X - positions[name2].X
				dy := positions[name1].Y - positions[name2].Y
				dist := math.Sqrt(dx*dx + dy*dy)

				if dist < 0.01 {
					dist = 0.01
				}

				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[name1] = Position{
					X: forces[name1].X + fx,
					Y: forces[name1].Y + fy,
				}
				forces[name2] = Position{
					X: forces[name2].X - fx,
					Y: forces[name2].Y - fy,
				}
			}
		}

		// Attraction between connected vertices
		for _, name1 := range names {
			for name2 := range neighbours[name1] {
				if _, exists := positions[name2]; !exists {
					continue
				}

				dx := positions[name1].X - positions[name2].X
				dy := positions[name1].Y - positions[name2].Y
				dist := math.Sqrt(dx*dx + dy*dy)

				if dist < 0.01 {
					continue
				}

				force := (dist * dist) / k
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[name1] = Position{
					X: forces[name1].X - fx,
					Y: forces[name1].Y - fy,
				}
			}
		}

		// Apply forces with cooling
		cool := 1.0 - float64(iter)/float64(fdl.config.Iterations)
		for _, name := range names {
			fx := forces[name].X
			fy := forces[name].Y
			force := math.Sqrt(fx*fx + fy*fy)

			if force > 0 {
				dx := (fx / force) * math.Min(force, temperature) * cool
				dy := (fy / force) * math.Min(force, temperature) * cool

				positions[name] = Position{
					X: positions[name].X + dx,
					Y: positions[name].Y + dy,
				}
			}
		}

		temperature *= 0.95
	}

	// Normalize positions to bounds
	return normalizePositions(positions, fdl.config.Width, fdl.config.Height, fdl.config.Padding), nil
}
