package dataset

import (
	"context"
	"errors"
	"testing"
)

// TestTemplateLookup tests named fixture retrieval
func TestTemplateLookup(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		wantError bool
	}{
		{
			name:     "Research pipeline exists",
			template: "research-pipeline",
		},
		{
			name:     "Messy pipeline exists",
			template: "messy-pipeline",
		},
		{
			name:      "Unknown template fails",
			template:  "no-such-template",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, err := Template(tt.template)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				if !errors.Is(err, ErrUnknownTemplate) {
					t.Errorf("Expected ErrUnknownTemplate, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if fx.Name() != tt.template {
				t.Errorf("Expected name %s, got %s", tt.template, fx.Name())
			}
		})
	}
}

// TestTemplateNames tests that the registry lists fixtures in stable order
func TestTemplateNames(t *testing.T) {
	names := TemplateNames()
	if len(names) != 2 {
		t.Fatalf("Expected 2 templates, got %d: %v", len(names), names)
	}
	if names[0] != "messy-pipeline" || names[1] != "research-pipeline" {
		t.Errorf("Expected sorted names, got %v", names)
	}
}

// TestFixtureClonesTables tests that callers cannot contaminate a fixture
func TestFixtureClonesTables(t *testing.T) {
	fx := ResearchPipeline()
	ctx := context.Background()

	first, err := fx.EdgeTable(ctx)
	if err != nil {
		t.Fatalf("EdgeTable failed: %v", err)
	}
	first.Rows[0][0] = "mutated"

	second, err := fx.EdgeTable(ctx)
	if err != nil {
		t.Fatalf("EdgeTable failed: %v", err)
	}
	if second.Rows[0][0] == "mutated" {
		t.Error("Fixture leaked internal state through its edge table")
	}
}

// TestResearchPipelineShape tests the flagship fixture's schema
func TestResearchPipelineShape(t *testing.T) {
	fx := ResearchPipeline()
	ctx := context.Background()

	edges, err := fx.EdgeTable(ctx)
	if err != nil {
		t.Fatalf("EdgeTable failed: %v", err)
	}
	for _, col := range []string{"from", "to", "description", "responsible", "status"} {
		if !edges.HasColumn(col) {
			t.Errorf("Edge table missing column %s", col)
		}
	}
	if edges.RowCount() == 0 {
		t.Error("Edge table is empty")
	}

	nodes, err := fx.NodeTable(ctx)
	if err != nil {
		t.Fatalf("NodeTable failed: %v", err)
	}
	for _, col := range []string{"name", "category"} {
		if !nodes.HasColumn(col) {
			t.Errorf("Node table missing column %s", col)
		}
	}
	if len(nodes.Distinct("category")) < 3 {
		t.Errorf("Expected at least 3 categories, got %v", nodes.Distinct("category"))
	}
}
