// Package awscfg loads the shared AWS configuration for DynamoDB, S3 and SNS clients.
package awscfg

import (
	"context"

	"github.com/ainager-onboarding/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Load resolves region and credentials. Static credentials are used only when
// AWS_ACCESS_KEY_ID is set; otherwise the default chain applies.
func Load(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// Endpoint returns the LocalStack override, or nil when talking to AWS.
func Endpoint(cfg *config.Config) *string {
	if cfg.AWSEndpointURL == "" {
		return nil
	}
	return aws.String(cfg.AWSEndpointURL)
}
