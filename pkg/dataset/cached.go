package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/softloud/sig-vis/pkg/logging"
	"github.com/softloud/sig-vis/pkg/metrics"
	"github.com/softloud/sig-vis/pkg/tabular"
)

// Source supplies the two input tables. It mirrors the assembler's
// contract so providers compose without importing the core package.
type Source interface {
	EdgeTable(ctx context.Context) (*tabular.Table, error)
	NodeTable(ctx context.Context) (*tabular.Table, error)
}

// DefaultSnapshotTTL is how long a fetched table pair is served from
// memory before the upstream is asked again.
const DefaultSnapshotTTL = 30 * time.Second

// CachedSource wraps another source with an in-memory memo and an
// on-disk snapshot. Both tables are fetched together so the pair
// always comes from the same upstream read; when the upstream fails,
// the last snapshot is served instead.
type CachedSource struct {
	next   Source
	path   string
	ttl    time.Duration
	logger logging.Logger

	mu        sync.Mutex
	edges     *tabular.Table
	nodes     *tabular.Table
	fetchedAt time.Time
	stale     bool
	registry  *metrics.Registry
	provider  string
}

// CachedOption configures a CachedSource.
type CachedOption func(*CachedSource)

// WithTTL sets how long the in-memory pair stays fresh.
func WithTTL(d time.Duration) CachedOption {
	return func(c *CachedSource) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithCacheLogger sets the logger for snapshot fallbacks.
func WithCacheLogger(l logging.Logger) CachedOption {
	return func(c *CachedSource) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCachedSource wraps next with memoization and, when path is
// non-empty, an on-disk snapshot.
func NewCachedSource(next Source, path string, opts ...CachedOption) *CachedSource {
	c := &CachedSource{
		next:   next,
		path:   path,
		ttl:    DefaultSnapshotTTL,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EdgeTable returns the edge list from the freshest available layer.
func (c *CachedSource) EdgeTable(ctx context.Context) (*tabular.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(ctx); err != nil {
		return nil, err
	}
	return c.edges.Clone(), nil
}

// NodeTable returns the node table from the freshest available layer.
func (c *CachedSource) NodeTable(ctx context.Context) (*tabular.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(ctx); err != nil {
		return nil, err
	}
	return c.nodes.Clone(), nil
}

// SetMetrics attaches a registry so fetches, fallbacks, and row counts
// are recorded under the given provider label.
func (c *CachedSource) SetMetrics(registry *metrics.Registry, provider string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if provider == "" {
		provider = "source"
	}
	c.registry = registry
	c.provider = provider
}

// Stale reports whether the held pair came from a fallback rather
// than a successful upstream fetch.
func (c *CachedSource) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// LastFetch returns when the held pair was obtained.
func (c *CachedSource) LastFetch() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchedAt
}

func (c *CachedSource) ensureLocked(ctx context.Context) error {
	if c.edges != nil && !c.stale && time.Since(c.fetchedAt) < c.ttl {
		return nil
	}

	start := time.Now()
	edges, err := c.next.EdgeTable(ctx)
	if err == nil {
		var nodes *tabular.Table
		nodes, err = c.next.NodeTable(ctx)
		if err == nil {
			c.edges = edges
			c.nodes = nodes
			c.fetchedAt = time.Now()
			c.stale = false
			c.recordFetch(metrics.StatusSuccess, start)
			if c.registry != nil {
				c.registry.UpdateDatasetRows(edges.RowCount(), nodes.RowCount())
				c.registry.SetDatasetStale(false)
			}
			c.persistLocked()
			return nil
		}
	}
	c.recordFetch(metrics.StatusError, start)

	// upstream failed; serve what we still have
	if c.edges != nil {
		c.stale = true
		if c.registry != nil {
			c.registry.SetDatasetStale(true)
		}
		c.logger.Warn("upstream fetch failed, serving held tables", logging.Error(err))
		return nil
	}
	if c.path != "" {
		snap, snapErr := ReadSnapshot(c.path)
		if snapErr == nil {
			c.edges = snap.Edges
			c.nodes = snap.Nodes
			c.fetchedAt = snap.CreatedAt
			c.stale = true
			if c.registry != nil {
				c.registry.RecordSnapshotServed()
				c.registry.SetDatasetStale(true)
			}
			c.logger.Warn("upstream fetch failed, serving snapshot",
				logging.Error(err),
				logging.Path(c.path),
			)
			return nil
		}
	}
	return err
}

// recordFetch records one upstream fetch attempt when a registry is attached.
func (c *CachedSource) recordFetch(status string, start time.Time) {
	if c.registry == nil {
		return
	}
	c.registry.RecordDatasetFetch(c.provider, status, time.Since(start))
}

func (c *CachedSource) persistLocked() {
	if c.path == "" {
		return
	}
	if err := WriteSnapshot(c.path, c.edges, c.nodes); err != nil {
		c.logger.Warn("snapshot write failed", logging.Error(err), logging.Path(c.path))
	}
}
