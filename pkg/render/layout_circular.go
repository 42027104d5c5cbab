package render

import (
	"math"

	"github.com/softloud/sig-vis/pkg/assembly"
)

// CircularLayout arranges vertices in a circle
type CircularLayout struct {
	config *LayoutConfig
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(config *LayoutConfig) *CircularLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &CircularLayout{config: config}
}

// ComputeLayout arranges vertices in a circle in first-reference order
func (cl *CircularLayout) ComputeLayout(g *assembly.Graph) (map[string]Position, error) {
	positions := make(map[string]Position)
	names := vertexNames(g)

	if len(names) == 0 {
		return positions, nil
	}

	centerX := cl.config.Width / 2
	centerY := cl.config.Height / 2
	radius := math.Min(centerX, centerY) - cl.config.Padding

	angleStep := 2 * math.Pi / float64(len(names))

	for i, name := range names {
		angle := float64(i) * angleStep
		positions[name] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}

	return positions, nil
}
