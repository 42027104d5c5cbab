package config

import (
	"context"
	"fmt"
	"os"

	"github.com/softloud/sig-vis/pkg/dataset"
	"github.com/softloud/sig-vis/pkg/logging"
)

// Provider names accepted by DatasetConfig.Provider.
const (
	ProviderTemplate = "template"
	ProviderFile     = "file"
	ProviderSheet    = "sheet"
	ProviderS3       = "s3"
	ProviderPostgres = "postgres"
)

// ProviderNames returns the accepted provider names.
func ProviderNames() []string {
	return []string{ProviderFile, ProviderPostgres, ProviderS3, ProviderSheet, ProviderTemplate}
}

// BuildSource constructs the table provider the configuration selects,
// wrapped in the cache layer when enabled. Remote providers dial out
// here, so callers pass the context they want that bounded by.
func (c *Config) BuildSource(ctx context.Context, logger logging.Logger) (dataset.Source, error) {
	var (
		src dataset.Source
		err error
	)

	switch c.Dataset.Provider {
	case ProviderTemplate:
		src, err = dataset.Template(c.Dataset.Template)
	case ProviderFile:
		src = dataset.NewFileSource(c.Dataset.EdgePath, c.Dataset.NodePath)
	case ProviderSheet:
		src, err = c.buildSheetSource()
	case ProviderS3:
		src, err = dataset.NewS3Source(ctx, dataset.S3Config{
			Region:       c.Dataset.S3.Region,
			Bucket:       c.Dataset.S3.Bucket,
			EdgeKey:      c.Dataset.S3.EdgeKey,
			NodeKey:      c.Dataset.S3.NodeKey,
			Endpoint:     c.Dataset.S3.Endpoint,
			AccessKey:    c.Dataset.S3.AccessKey,
			SecretKey:    c.Dataset.S3.SecretKey,
			UsePathStyle: c.Dataset.S3.UsePathStyle,
		})
	case ProviderPostgres:
		src, err = dataset.NewPostgresSource(ctx, dataset.PostgresConfig{
			DatabaseURL: c.Dataset.Postgres.URL,
			EdgeQuery:   c.Dataset.Postgres.EdgeQuery,
			NodeQuery:   c.Dataset.Postgres.NodeQuery,
		})
	default:
		err = fmt.Errorf("config: unknown provider %q", c.Dataset.Provider)
	}
	if err != nil {
		return nil, err
	}

	if c.Dataset.Cache.Enabled {
		src = dataset.NewCachedSource(src, c.Dataset.Cache.SnapshotPath,
			dataset.WithTTL(c.Dataset.Cache.TTL.Std()),
			dataset.WithCacheLogger(logger))
	}

	return src, nil
}

func (c *Config) buildSheetSource() (dataset.Source, error) {
	pem, err := os.ReadFile(c.Dataset.Sheet.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("config: read sheet key: %w", err)
	}
	return dataset.NewSheetSource(dataset.SheetConfig{
		SpreadsheetID: c.Dataset.Sheet.SpreadsheetID,
		EdgesRange:    c.Dataset.Sheet.EdgesRange,
		NodesRange:    c.Dataset.Sheet.NodesRange,
		Endpoint:      c.Dataset.Sheet.Endpoint,
		Account: dataset.ServiceAccount{
			Email:         c.Dataset.Sheet.AccountEmail,
			PrivateKeyPEM: pem,
		},
	})
}
