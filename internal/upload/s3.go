// Package upload copies finished reports to S3 compatible object storage.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tsawler/textmetrics/internal/config"
)

var contentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
	".json": "application/json",
	".txt":  "text/plain; charset=utf-8",
}

// S3Uploader puts report files into a bucket under an optional prefix.
type S3Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// New builds an uploader for cfg. Static credentials are used when both
// keys are set; otherwise the default AWS credential chain applies. A custom
// endpoint switches to path-style addressing for MinIO and similar stores.
func New(ctx context.Context, cfg config.UploadConfig) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("missing S3 bucket")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("configure s3 client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Key returns the object key for a file name.
func (u *S3Uploader) Key(name string) string {
	if u.prefix == "" {
		return name
	}
	return u.prefix + "/" + name
}

// Upload stores the file at path as prefix/<basename> and returns the key.
func (u *S3Uploader) Upload(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open report for upload: %w", err)
	}
	defer file.Close()

	key := u.Key(filepath.Base(path))
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		input.ContentType = aws.String(ct)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	return key, nil
}
