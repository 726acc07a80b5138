package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sdejongh/imdirdiff/internal/platform"
)

// S3API is the subset of the S3 client used by the backend
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Options configures how the AWS client is built
type S3Options struct {
	Region  string
	Profile string
}

// S3 is a read-only backend over a bucket prefix
type S3 struct {
	client S3API
	uri    string
	bucket string
	prefix string
}

// NewS3 creates a backend for an s3://bucket/prefix root using the default
// AWS credential chain
func NewS3(ctx context.Context, uri string, opts S3Options) (*S3, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3WithClient(s3.NewFromConfig(cfg), uri)
}

// NewS3WithClient creates a backend around an existing client
func NewS3WithClient(client S3API, uri string) (*S3, error) {
	bucket, prefix, err := platform.ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	return &S3{
		client: client,
		uri:    strings.TrimSuffix(uri, "/"),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// List returns every object under the prefix. Directory marker keys are skipped.
func (b *S3) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo

	input := &s3.ListObjectsV2Input{Bucket: aws.String(b.bucket)}
	if b.prefix != "" {
		input.Prefix = aws.String(b.prefix + "/")
	}

	paginator := s3.NewListObjectsV2Paginator(b.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
				continue
			}

			rel := *obj.Key
			if b.prefix != "" {
				rel = strings.TrimPrefix(rel, b.prefix+"/")
			}

			files = append(files, FileInfo{
				Path:         b.Location(rel),
				Size:         aws.ToInt64(obj.Size),
				ModTime:      aws.ToTime(obj.LastModified),
				RelativePath: rel,
			})
		}
	}

	return files, nil
}

// Read opens an object for reading
func (b *S3) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	return resp.Body, nil
}

// Stat returns object metadata
func (b *S3) Stat(ctx context.Context, path string) (*FileInfo, error) {
	resp, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to head object: %w", err)
	}

	return &FileInfo{
		Path:         b.Location(path),
		Size:         aws.ToInt64(resp.ContentLength),
		ModTime:      aws.ToTime(resp.LastModified),
		RelativePath: path,
	}, nil
}

// Location returns the s3:// URI of a relative path
func (b *S3) Location(path string) string {
	return platform.S3Scheme + b.bucket + "/" + b.key(path)
}

// Root returns the URI the backend was opened on
func (b *S3) Root() string {
	return b.uri
}

// Close releases resources (no-op for S3)
func (b *S3) Close() error {
	return nil
}

func (b *S3) key(path string) string {
	if b.prefix == "" {
		return path
	}
	return b.prefix + "/" + path
}
