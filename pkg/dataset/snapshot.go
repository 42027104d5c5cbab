package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"time"

	"github.com/golang/snappy"

	"github.com/softloud/sig-vis/pkg/tabular"
)

// Snapshot file format:
//
//	[Magic:4][Version:1][CreatedAt:8][EdgeLen:4][EdgeData][NodeLen:4][NodeData][Checksum:4]
//
// Tables are CSV-encoded then snappy-compressed; the trailing checksum
// covers every preceding byte.
var snapshotMagic = [4]byte{'S', 'V', 'S', 'N'}

const snapshotVersion = 1

// Snapshot is a decoded on-disk copy of a fetched table pair.
type Snapshot struct {
	Edges     *tabular.Table
	Nodes     *tabular.Table
	CreatedAt time.Time
}

// WriteSnapshot persists the table pair atomically (write to a temp
// file, then rename).
func WriteSnapshot(path string, edges, nodes *tabular.Table) error {
	edgeData, err := encodeTable(edges)
	if err != nil {
		return fmt.Errorf("dataset: encode edges: %w", err)
	}
	nodeData, err := encodeTable(nodes)
	if err != nil {
		return fmt.Errorf("dataset: encode nodes: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(snapshotMagic[:])
	buf.WriteByte(snapshotVersion)
	binary.Write(&buf, binary.BigEndian, time.Now().Unix())
	binary.Write(&buf, binary.BigEndian, uint32(len(edgeData)))
	buf.Write(edgeData)
	binary.Write(&buf, binary.BigEndian, uint32(len(nodeData)))
	buf.Write(nodeData)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(buf.Bytes()))

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("dataset: write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("dataset: rename snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads and verifies a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("dataset: %s: %w", path, ErrSnapshotMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: read snapshot: %w", err)
	}

	// magic + version + timestamp + two lengths + checksum
	if len(data) < 4+1+8+4+4+4 {
		return nil, fmt.Errorf("dataset: %s truncated: %w", path, ErrSnapshotCorrupt)
	}
	if !bytes.Equal(data[:4], snapshotMagic[:]) {
		return nil, fmt.Errorf("dataset: %s bad magic: %w", path, ErrSnapshotCorrupt)
	}
	if data[4] != snapshotVersion {
		return nil, fmt.Errorf("dataset: %s version %d: %w", path, data[4], ErrSnapshotCorrupt)
	}

	body, sum := data[:len(data)-4], binary.BigEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return nil, fmt.Errorf("dataset: %s checksum mismatch: %w", path, ErrSnapshotCorrupt)
	}

	createdAt := int64(binary.BigEndian.Uint64(data[5:13]))
	rest := body[13:]

	edgeData, rest, err := readBlock(rest)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s edges: %w", path, err)
	}
	nodeData, _, err := readBlock(rest)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s nodes: %w", path, err)
	}

	edges, err := decodeTable(edgeData)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s edges: %w", path, err)
	}
	nodes, err := decodeTable(nodeData)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s nodes: %w", path, err)
	}

	return &Snapshot{
		Edges:     edges,
		Nodes:     nodes,
		CreatedAt: time.Unix(createdAt, 0),
	}, nil
}

func encodeTable(t *tabular.Table) ([]byte, error) {
	var raw bytes.Buffer
	if err := t.WriteCSV(&raw); err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw.Bytes()), nil
}

func decodeTable(compressed []byte) (*tabular.Table, error) {
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrSnapshotCorrupt)
	}
	return tabular.ReadCSV(bytes.NewReader(raw))
}

func readBlock(data []byte) (block, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, ErrSnapshotCorrupt
	}
	n := binary.BigEndian.Uint32(data[:4])
	if uint32(len(data)-4) < n {
		return nil, nil, ErrSnapshotCorrupt
	}
	return data[4 : 4+n], data[4+n:], nil
}
