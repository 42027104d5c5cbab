package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/softloud/sig-vis/pkg/assembly"
	"github.com/softloud/sig-vis/pkg/dataset"
	"github.com/softloud/sig-vis/pkg/render"
)

func main() {
	fmt.Println("🚀 sig-vis - Starting...")

	ctx := context.Background()

	// Load the bundled research pipeline
	fmt.Println("\n📊 Loading the research-pipeline template...")
	src, err := dataset.Template("research-pipeline")
	if err != nil {
		log.Fatalf("Failed to load template: %v", err)
	}

	asm, err := assembly.New(ctx, src)
	if err != nil {
		log.Fatalf("Failed to assemble graph: %v", err)
	}
	fmt.Println("✅ Graph assembled")

	// Walk the vertices
	fmt.Println("\n🔵 Vertices (first-reference order):")
	graph := asm.Graph()
	for _, v := range graph.Vertices {
		category := "(none)"
		if v.HasCategory() {
			category = v.Category
		}
		fmt.Printf("  - %-10s category=%-10s class=%s\n", v.Name, category, v.Class)
	}

	// Walk the edges
	fmt.Println("\n🔗 Edges:")
	for _, e := range graph.Edges {
		fmt.Printf("  %s → %s (%s, responsible: %s)\n",
			e.From, e.To, e.Status(), e.Attr(assembly.AttrResponsible))
	}

	// Show what a messy dataset surfaces
	fmt.Println("\n⚠️  Loading the messy-pipeline template...")
	messySrc, err := dataset.Template("messy-pipeline")
	if err != nil {
		log.Fatalf("Failed to load template: %v", err)
	}
	messy, err := assembly.New(ctx, messySrc)
	if err != nil {
		log.Fatalf("Failed to assemble messy graph: %v", err)
	}
	for _, w := range messy.Warnings() {
		fmt.Printf("  warning: %s in %s.%s row %d: %s\n",
			w.Kind, w.Table, w.Column, w.Row, w.Message)
	}
	fmt.Printf("  Still built: %d vertices, %d edges\n",
		messy.VertexCount(), messy.EdgeCount())

	// Collapse the pipeline to categories
	fmt.Println("\n🔀 Aggregating by category...")
	if err := asm.SetMode(assembly.ModeByCategory); err != nil {
		log.Fatalf("Failed to aggregate: %v", err)
	}
	for _, v := range asm.Graph().Vertices {
		fmt.Printf("  - %s\n", v.Name)
	}
	fmt.Printf("  %d vertices, %d edges\n", asm.VertexCount(), asm.EdgeCount())

	// Back to the per-node view
	fmt.Println("\n↩️  Reloading the per-node view...")
	if err := asm.SetMode(assembly.ModeNone); err != nil {
		log.Fatalf("Failed to reset mode: %v", err)
	}
	if err := asm.Reload(ctx); err != nil {
		log.Fatalf("Failed to reload: %v", err)
	}
	fmt.Printf("  %d vertices, %d edges\n", asm.VertexCount(), asm.EdgeCount())

	// Render artifacts
	fmt.Println("\n🎨 Rendering diagrams...")
	renderer, err := render.New(asm, render.WithSeed(42), render.WithTitle("Research Pipeline"))
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	for _, format := range []render.Format{render.FormatSVG, render.FormatDOT} {
		artifact, err := renderer.Plot(ctx, format)
		if err != nil {
			log.Fatalf("Failed to render %s: %v", format, err)
		}
		path := "pipeline." + format.String()
		if err := os.WriteFile(path, artifact.Data, 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("  Wrote %s (%d bytes, artifact %s)\n", path, len(artifact.Data), artifact.ID)
	}

	// Statistics
	fmt.Println("\n📈 Final statistics:")
	stats := asm.Stats()
	fmt.Printf("  Vertices: %d\n", stats.VertexCount)
	fmt.Printf("  Edges: %d\n", stats.EdgeCount)
	fmt.Printf("  Mode: %s\n", stats.Mode)
	fmt.Printf("  Warnings: %d\n", stats.Warnings)

	fmt.Println("\n✨ Demo complete!")
}
