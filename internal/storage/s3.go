package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	appcfg "qissa-server/internal/config"
	"qissa-server/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Store puts avatar images into an S3-compatible bucket (MinIO in dev)
// and hands back the object key plus a public URL.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Store(ctx context.Context, cfg appcfg.S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.Endpoint + "/" + cfg.Bucket
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, data []byte, contentType string) (*models.Avatar, error) {
	key := fmt.Sprintf("avatars/%s.jpg", uuid.NewString())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	return &models.Avatar{
		AssetID: key,
		URL:     s.publicURL + "/" + key,
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, assetID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(assetID),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
