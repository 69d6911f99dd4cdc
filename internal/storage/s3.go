// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/staranto/galleryctl/internal/aws"
)

// S3 stores each item as an object named prefix/key.
type S3 struct {
	client *s3v2.Client
	bucket string
	prefix string
}

// NewS3 builds the driver from the s3 fields of opts. The AWS config chain
// is inherited from the environment unless profile/region/endpoint are set.
func NewS3(ctx context.Context, opts Options) (*S3, error) {
	if opts.S3Bucket == "" {
		return nil, errors.New("s3 storage requires a bucket")
	}

	var awsOpts []aws.Option
	if opts.S3Profile != "" {
		awsOpts = append(awsOpts, aws.WithProfile(opts.S3Profile))
	}
	if opts.S3Region != "" {
		awsOpts = append(awsOpts, aws.WithRegion(opts.S3Region))
	}
	if opts.S3Endpoint != "" {
		awsOpts = append(awsOpts, aws.WithEndpoint(opts.S3Endpoint))
	}

	client, err := aws.NewS3(ctx, awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3{client: client, bucket: opts.S3Bucket, prefix: opts.S3Prefix}, nil
}

func (s *S3) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *S3) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read s3 object: %w", err)
	}
	return data, true, nil
}

func (s *S3) SetItem(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(s.bucket),
		Key:         awsv2.String(s.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: awsv2.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	return nil
}

func (s *S3) RemoveItem(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3v2.DeleteObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	return nil
}

func (s *S3) Close() error { return nil }
