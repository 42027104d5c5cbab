package dataset

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/softloud/sig-vis/pkg/tabular"
)

var ErrEmptyDatabaseURL = errors.New("database URL cannot be empty")

const (
	defaultEdgeQuery = "SELECT * FROM edges"
	defaultNodeQuery = "SELECT * FROM nodes"
)

// PostgresConfig locates the two tables in a relational store. The
// queries may be any SELECT whose result sets carry the schema columns.
type PostgresConfig struct {
	DatabaseURL string
	EdgeQuery   string // defaults to SELECT * FROM edges
	NodeQuery   string // defaults to SELECT * FROM nodes
}

// PostgresSource fetches the tables from PostgreSQL.
type PostgresSource struct {
	pool *pgxpool.Pool
	cfg  PostgresConfig
}

// NewPostgresSource creates a pooled connection and verifies it.
func NewPostgresSource(ctx context.Context, cfg PostgresConfig) (*PostgresSource, error) {
	if cfg.DatabaseURL == "" {
		return nil, ErrEmptyDatabaseURL
	}
	if cfg.EdgeQuery == "" {
		cfg.EdgeQuery = defaultEdgeQuery
	}
	if cfg.NodeQuery == "" {
		cfg.NodeQuery = defaultNodeQuery
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pooling configuration
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 5 * time.Minute
	poolCfg.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &PostgresSource{pool: pool, cfg: cfg}, nil
}

// EdgeTable runs the edge query and captures the result set.
func (p *PostgresSource) EdgeTable(ctx context.Context) (*tabular.Table, error) {
	return p.queryTable(ctx, p.cfg.EdgeQuery)
}

// NodeTable runs the node query and captures the result set.
func (p *PostgresSource) NodeTable(ctx context.Context) (*tabular.Table, error) {
	return p.queryTable(ctx, p.cfg.NodeQuery)
}

// Ping checks database connectivity.
func (p *PostgresSource) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool.
func (p *PostgresSource) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresSource) queryTable(ctx context.Context, query string) (*tabular.Table, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	t := tabular.New(columns...)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = stringifyValue(v)
		}
		t.AppendRow(cells...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return t, nil
}

// stringifyValue renders a database value as a cell. NULLs become
// empty cells, which downstream validation treats as null.
func stringifyValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
