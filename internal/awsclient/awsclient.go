// Package awsclient loads the shared AWS configuration used by every service
// client in the listener (Data API, SQS, S3).
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Options selects the region and an optional endpoint override. An empty
// Region defers to the SDK default chain (AWS_REGION, profile, IMDS).
type Options struct {
	Region   string
	Endpoint string
}

// Clients holds the loaded AWS config and the endpoint override to apply to
// each service client.
type Clients struct {
	Config   aws.Config
	endpoint string
}

// Load resolves credentials and region once for the process.
func Load(ctx context.Context, o Options) (*Clients, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, awsconfig.WithRegion(o.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Clients{Config: cfg, endpoint: o.Endpoint}, nil
}

// RDSData returns a Data API client.
func (c *Clients) RDSData() *rdsdata.Client {
	return rdsdata.NewFromConfig(c.Config, func(o *rdsdata.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})
}

// SQS returns an SQS client.
func (c *Clients) SQS() *sqs.Client {
	return sqs.NewFromConfig(c.Config, func(o *sqs.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})
}

// S3 returns an S3 client. With an endpoint override, path-style addressing is
// enabled (for MinIO and similar).
func (c *Clients) S3() *s3.Client {
	return s3.NewFromConfig(c.Config, func(o *s3.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
			o.UsePathStyle = true
		}
	})
}
