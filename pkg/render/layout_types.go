package render

import (
	"fmt"

	"github.com/softloud/sig-vis/pkg/assembly"
)

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Number of iterations for iterative algorithms
	Padding    float64 // Padding from edges
	Seed       int64   // Seed for randomized placement, 0 means fixed default
}

// DefaultLayoutConfig returns the canvas used when the caller does not
// specify one.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{Width: 960, Height: 640, Iterations: 50, Padding: 50}
}

// Layout interface for different layout algorithms. Positions are
// keyed by vertex name.
type Layout interface {
	ComputeLayout(g *assembly.Graph) (map[string]Position, error)
}

// Layout algorithm names accepted by NewLayout.
const (
	LayoutForce        = "force"
	LayoutCircular     = "circular"
	LayoutHierarchical = "hierarchical"
)

// NewLayout returns the named layout algorithm.
func NewLayout(name string, config *LayoutConfig) (Layout, error) {
	switch name {
	case LayoutForce, "":
		return NewForceDirectedLayout(config), nil
	case LayoutCircular:
		return NewCircularLayout(config), nil
	case LayoutHierarchical:
		return NewHierarchicalLayout(config), nil
	default:
		return nil, fmt.Errorf("layout %q: %w", name, ErrUnknownLayout)
	}
}

// LayoutNames lists the available algorithms.
func LayoutNames() []string {
	return []string{LayoutCircular, LayoutForce, LayoutHierarchical}
}
