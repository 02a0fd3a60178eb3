// Package filestorage keeps attested documents in an S3-compatible bucket and
// hands out time-boxed download links for them.
package filestorage

//go:generate mockgen -destination s3_mocks_test.go -package filestorage_test -source=s3.go -mock_names objectPutter=MockObjectPutter,objectPresigner=MockObjectPresigner

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	defaultContentType = "application/octet-stream"
	defaultURLExpiry   = 15 * time.Minute
)

type objectPutter interface {
	PutObject(
		ctx context.Context,
		input *s3.PutObjectInput,
		opts ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
}

type objectPresigner interface {
	PresignGetObject(
		ctx context.Context,
		input *s3.GetObjectInput,
		opts ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error)
}

// S3Storage stores files under their path as object key.
type S3Storage struct {
	client    objectPutter
	presigner objectPresigner
	bucket    string
	expiry    time.Duration
}

type Option func(*S3Storage)

// WithURLExpiry sets how long signed URLs stay valid.
func WithURLExpiry(d time.Duration) Option {
	return func(s *S3Storage) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// NewS3Storage creates S3Storage.
func NewS3Storage(client objectPutter, presigner objectPresigner, bucket string, opts ...Option) *S3Storage {
	s := &S3Storage{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		expiry:    defaultURLExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config locates the bucket. Endpoint is set for S3-compatible stores such as
// MinIO and switches the client to path-style addressing.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string
	Expiry   time.Duration
}

// New builds an S3Storage from the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("file storage bucket is required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(endpointResolver(cfg.Endpoint, cfg.Region)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})
	return NewS3Storage(client, s3.NewPresignClient(client), cfg.Bucket, WithURLExpiry(cfg.Expiry)), nil
}

func endpointResolver(endpoint, signingRegion string) aws.EndpointResolverWithOptionsFunc {
	return func(service, region string, _ ...any) (aws.Endpoint, error) {
		if service == s3.ServiceID {
			return aws.Endpoint{
				URL:               endpoint,
				SigningRegion:     signingRegion,
				HostnameImmutable: true,
			}, nil
		}
		return aws.Endpoint{SigningRegion: signingRegion}, &aws.EndpointNotFoundError{}
	}
}

// Save uploads r to key p.
func (s *S3Storage) Save(ctx context.Context, r io.Reader, p string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(p),
		Body:        r,
		ContentType: aws.String(contentType(p)),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", p, err)
	}
	return nil
}

// SignedURL returns a presigned GET URL for key p.
func (s *S3Storage) SignedURL(ctx context.Context, p string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(p),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", p, err)
	}
	return req.URL, nil
}

func contentType(p string) string {
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return t
	}
	return defaultContentType
}
