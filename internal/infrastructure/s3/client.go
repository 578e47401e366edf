package s3infra

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ainager-onboarding/internal/config"
	"github.com/ainager-onboarding/internal/infrastructure/awscfg"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// API is the subset of the S3 client used by Store.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store mirrors artifacts into a bucket.
type Store struct {
	client API
	bucket string
	prefix string
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config for s3: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if ep := awscfg.Endpoint(cfg); ep != nil {
			o.BaseEndpoint = ep
			o.UsePathStyle = true
		}
	}), nil
}

// NewStore creates a Store writing under prefix in bucket.
func NewStore(client API, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Upload streams r to S3 under the store prefix and returns the object URI.
func (s *Store) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(detectContentType(name)),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func detectContentType(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".txt"):
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
