package follow

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/alfredjeanlab/listener/internal/idgen"
	"github.com/alfredjeanlab/listener/internal/model"
)

// PutObjectAPI is the subset of the S3 client used by S3Destination.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Destination uploads each page as one JSONL object.
type S3Destination struct {
	api    PutObjectAPI
	bucket string
	prefix string
}

// NewS3Destination writes objects under prefix in bucket.
func NewS3Destination(api PutObjectAPI, bucket, prefix string) *S3Destination {
	return &S3Destination{api: api, bucket: bucket, prefix: prefix}
}

func (d *S3Destination) Name() string { return "s3://" + d.bucket }

// ObjectKey returns <prefix>/<org>/<first>-<last>-<id>.jsonl.
func (d *S3Destination) ObjectKey(orgID string, first, last int64) (string, error) {
	id, err := idgen.Generate()
	if err != nil {
		return "", err
	}
	return path.Join(d.prefix, orgID, fmt.Sprintf("%d-%d-%s.jsonl", first, last, id)), nil
}

func (d *S3Destination) Write(ctx context.Context, orgID string, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := EncodeJSONL(&buf, orgID, events); err != nil {
		return err
	}
	key, err := d.ObjectKey(orgID, events[0].EventID, events[len(events)-1].EventID)
	if err != nil {
		return err
	}
	_, err = d.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("s3 put object %s: %w", key, err)
	}
	return nil
}
