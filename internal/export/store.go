package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rickgao/settlement-data/internal/config"
)

// Store persists export objects under slash-separated keys.
type Store interface {
	Name() string
	Put(ctx context.Context, key string, data []byte) error
}

// DirStore writes objects below a local directory.
type DirStore struct {
	root string
}

// NewDirStore creates a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

func (d *DirStore) Name() string { return "dir:" + d.root }

// Put writes data atomically: a temp file in the target directory is
// renamed into place.
func (d *DirStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := path.Clean("/" + key)[1:]
	if clean == "" {
		return fmt.Errorf("invalid export key %q", key)
	}
	target := filepath.Join(d.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}

// PutObjectAPI is the subset of the S3 client used by S3Store.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads objects to a bucket.
type S3Store struct {
	client  PutObjectAPI
	bucket  string
	prefix  string
	timeout time.Duration
}

// NewS3Store builds an S3 client from cfg. Static credentials are used when
// both keys are set; otherwise the default AWS chain applies.
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return NewS3StoreWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3StoreWithClient wraps an existing client.
func NewS3StoreWithClient(client PutObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		timeout: 2 * time.Minute,
	}
}

func (s *S3Store) Name() string { return "s3://" + s.bucket }

// Key returns the full object key for key.
func (s *S3Store) Key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
