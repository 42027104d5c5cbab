// Package dataset supplies the edge and node tables the assembler
// consumes. Providers cover a sheets-style HTTP API, S3-compatible
// object stores, Postgres, local CSV files, and built-in template
// fixtures; CachedSource adds a compressed on-disk snapshot so a
// flaky upstream doesn't take the diagram down with it.
package dataset

import "errors"

// Common sentinel errors
var (
	ErrSnapshotMissing = errors.New("snapshot missing")
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrBadResponse     = errors.New("unexpected response")
)
