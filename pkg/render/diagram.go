package render

import (
	"encoding/json"

	"github.com/softloud/sig-vis/pkg/assembly"
)

// Diagram pairs an assembled graph with computed vertex positions.
type Diagram struct {
	Graph     *assembly.Graph
	Positions map[string]Position
	Width     float64
	Height    float64
}

// ExportJSON exports the diagram to JSON
func (d *Diagram) ExportJSON() ([]byte, error) {
	type VertexViz struct {
		Name     string  `json:"name"`
		Category string  `json:"category,omitempty"`
		Class    string  `json:"class"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
	}

	type EdgeViz struct {
		From  string            `json:"from"`
		To    string            `json:"to"`
		Attrs map[string]string `json:"attrs,omitempty"`
	}

	type VizData struct {
		Width    float64     `json:"width"`
		Height   float64     `json:"height"`
		Vertices []VertexViz `json:"vertices"`
		Edges    []EdgeViz   `json:"edges"`
	}

	data := VizData{
		Width:    d.Width,
		Height:   d.Height,
		Vertices: make([]VertexViz, 0, d.Graph.VertexCount()),
		Edges:    make([]EdgeViz, 0, d.Graph.EdgeCount()),
	}

	for _, v := range d.Graph.Vertices {
		pos := d.Positions[v.Name]
		data.Vertices = append(data.Vertices, VertexViz{
			Name:     v.Name,
			Category: v.Category,
			Class:    v.Class,
			X:        pos.X,
			Y:        pos.Y,
		})
	}

	for _, e := range d.Graph.Edges {
		data.Edges = append(data.Edges, EdgeViz{
			From:  e.From,
			To:    e.To,
			Attrs: e.Attrs,
		})
	}

	return json.Marshal(data)
}
