package render

import (
	"github.com/softloud/sig-vis/pkg/assembly"
)

// HierarchicalLayout arranges vertices in flow order, sources at the top
type HierarchicalLayout struct {
	config *LayoutConfig
}

// NewHierarchicalLayout creates a new hierarchical layout
func NewHierarchicalLayout(config *LayoutConfig) *HierarchicalLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &HierarchicalLayout{config: config}
}

// ComputeLayout arranges vertices hierarchically
func (hl *HierarchicalLayout) ComputeLayout(g *assembly.Graph) (map[string]Position, error) {
	positions := make(map[string]Position)
	names := vertexNames(g)

	if len(names) == 0 {
		return positions, nil
	}

	outgoing := make(map[string][]string)
	indegree := make(map[string]int)
	for _, edge := range g.Edges {
		outgoing[edge.From] = append(outgoing[edge.From], edge.To)
		indegree[edge.To]++
	}

	// Roots are vertices nothing flows into
	roots := make([]string, 0)
	for _, name := range names {
		if indegree[name] == 0 {
			roots = append(roots, name)
		}
	}

	if len(roots) == 0 {
		// No clear root, use first vertex
		roots = []string{names[0]}
	}

	// Build levels using BFS
	levels := make([][]string, 0)
	visited := make(map[string]bool)
	currentLevel := roots

	for len(currentLevel) > 0 {
		levels = append(levels, currentLevel)
		nextLevel := make([]string, 0)

		for _, name := range currentLevel {
			visited[name] = true
			for _, target := range outgoing[name] {
				if !visited[target] {
					nextLevel = append(nextLevel, target)
					visited[target] = true
				}
			}
		}

		currentLevel = nextLevel
	}

	// Add unvisited vertices to last level
	for _, name := range names {
		if !visited[name] {
			if len(levels) == 0 {
				levels = append(levels, []string{})
			}
			levels[len(levels)-1] = append(levels[len(levels)-1], name)
		}
	}

	// Position vertices
	levelHeight := (hl.config.Height - 2*hl.config.Padding) / float64(len(levels))

	for levelIdx, level := range levels {
		y := hl.config.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		levelWidth := hl.config.Width - 2*hl.config.Padding
		spacing := levelWidth / float64(len(level)+1)

		for vertexIdx, name := range level {
			x := hl.config.Padding + spacing*float64(vertexIdx+1)
			positions[name] = Position{X: x, Y: y}
		}
	}

	return positions, nil
}
