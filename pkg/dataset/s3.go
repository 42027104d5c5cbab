package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/softloud/sig-vis/pkg/tabular"
)

var ErrEmptyBucket = errors.New("bucket cannot be empty")

// S3Config locates the two CSV objects in an S3-compatible store.
type S3Config struct {
	Region       string
	Bucket       string
	EdgeKey      string // defaults to edges.csv
	NodeKey      string // defaults to nodes.csv
	Endpoint     string // optional, for MinIO-compatible stores
	AccessKey    string // optional static credentials
	SecretKey    string
	UsePathStyle bool
}

// S3Source fetches the tables from an object store.
type S3Source struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3Source resolves credentials and builds the client. Credentials
// fall back to the ambient AWS chain when no static pair is given.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, ErrEmptyBucket
	}
	if cfg.EdgeKey == "" {
		cfg.EdgeKey = "edges.csv"
	}
	if cfg.NodeKey == "" {
		cfg.NodeKey = "nodes.csv"
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("dataset: aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Source{client: client, cfg: cfg}, nil
}

// EdgeTable fetches and parses the edge list object.
func (s *S3Source) EdgeTable(ctx context.Context) (*tabular.Table, error) {
	return s.fetchObject(ctx, s.cfg.EdgeKey)
}

// NodeTable fetches and parses the node attribute object.
func (s *S3Source) NodeTable(ctx context.Context) (*tabular.Table, error) {
	return s.fetchObject(ctx, s.cfg.NodeKey)
}

func (s *S3Source) fetchObject(ctx context.Context, key string) (*tabular.Table, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("dataset: get s3://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	defer out.Body.Close()

	t, err := tabular.ReadCSV(out.Body)
	if err != nil {
		return nil, fmt.Errorf("dataset: s3://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	return t, nil
}
