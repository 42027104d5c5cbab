package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/softloud/sig-vis/pkg/dataset"
	"github.com/softloud/sig-vis/pkg/logging"
)

// TestBuildSourceTemplate tests building the bundled template provider
func TestBuildSourceTemplate(t *testing.T) {
	cfg := Default()

	src, err := cfg.BuildSource(context.Background(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("BuildSource failed: %v", err)
	}

	edges, err := src.EdgeTable(context.Background())
	if err != nil {
		t.Fatalf("EdgeTable failed: %v", err)
	}
	if edges.RowCount() == 0 {
		t.Error("expected template edges to have rows")
	}
}

// TestBuildSourceUnknownTemplate tests the error for a bad template name
func TestBuildSourceUnknownTemplate(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Template = "no-such-template"

	if _, err := cfg.BuildSource(context.Background(), logging.NewNopLogger()); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

// TestBuildSourceFile tests building the CSV file provider
func TestBuildSourceFile(t *testing.T) {
	dir := t.TempDir()
	edgePath := filepath.Join(dir, "edges.csv")
	nodePath := filepath.Join(dir, "nodes.csv")

	edgeCSV := "from,to,description,responsible,status\na,b,link,ana,operational\n"
	nodeCSV := "name,category\na,humans\nb,tools\n"
	if err := os.WriteFile(edgePath, []byte(edgeCSV), 0644); err != nil {
		t.Fatalf("write edges: %v", err)
	}
	if err := os.WriteFile(nodePath, []byte(nodeCSV), 0644); err != nil {
		t.Fatalf("write nodes: %v", err)
	}

	cfg := Default()
	cfg.Dataset.Provider = ProviderFile
	cfg.Dataset.EdgePath = edgePath
	cfg.Dataset.NodePath = nodePath

	src, err := cfg.BuildSource(context.Background(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("BuildSource failed: %v", err)
	}

	nodes, err := src.NodeTable(context.Background())
	if err != nil {
		t.Fatalf("NodeTable failed: %v", err)
	}
	if nodes.RowCount() != 2 {
		t.Errorf("expected 2 node rows, got %d", nodes.RowCount())
	}
}

// TestBuildSourceUnknownProvider tests the error for a bad provider
func TestBuildSourceUnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Provider = "carrier-pigeon"

	if _, err := cfg.BuildSource(context.Background(), logging.NewNopLogger()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

// TestBuildSourceCached tests that enabling the cache wraps the provider
func TestBuildSourceCached(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Cache.Enabled = true
	cfg.Dataset.Cache.SnapshotPath = filepath.Join(t.TempDir(), "snapshot.dat")

	src, err := cfg.BuildSource(context.Background(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("BuildSource failed: %v", err)
	}

	if _, ok := src.(*dataset.CachedSource); !ok {
		t.Errorf("expected *dataset.CachedSource, got %T", src)
	}
}
