package dataset

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/softloud/sig-vis/pkg/tabular"
)

// mmapThreshold is the file size above which CSVs are read through a
// memory map instead of a plain file handle.
const mmapThreshold = 1 << 20

// FileSource reads the two tables from local CSV files.
type FileSource struct {
	edgePath string
	nodePath string
}

// NewFileSource creates a source over an edge CSV and a node CSV.
func NewFileSource(edgePath, nodePath string) *FileSource {
	return &FileSource{edgePath: edgePath, nodePath: nodePath}
}

// EdgeTable reads the edge list CSV.
func (s *FileSource) EdgeTable(ctx context.Context) (*tabular.Table, error) {
	return readCSVFile(ctx, s.edgePath)
}

// NodeTable reads the node attribute CSV.
func (s *FileSource) NodeTable(ctx context.Context) (*tabular.Table, error) {
	return readCSVFile(ctx, s.nodePath)
}

func readCSVFile(ctx context.Context, path string) (*tabular.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: stat %s: %w", path, err)
	}

	if info.Size() >= mmapThreshold {
		return readCSVMapped(path, info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	t, err := tabular.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return t, nil
}

// readCSVMapped parses a large CSV through a memory map so the kernel
// pages it in on demand.
func readCSVMapped(path string, size int64) (*tabular.Table, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: mmap %s: %w", path, err)
	}
	defer reader.Close()

	t, err := tabular.ReadCSV(io.NewSectionReader(reader, 0, size))
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return t, nil
}
