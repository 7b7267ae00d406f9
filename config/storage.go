package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	// PublicBaseURL overrides the default S3 URL, e.g. a CDN distribution.
	PublicBaseURL string
}

// NewS3Config initializes the S3 client using environment variables
func NewS3Config(ctx context.Context) (*S3Config, error) {
	bucket := os.Getenv("S3_BUCKET_NAME")
	if bucket == "" {
		bucket = "foodshare-meal-images" // default bucket name
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(os.Getenv("AWS_REGION")),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg)

	return &S3Config{
		Client:        client,
		BucketName:    bucket,
		PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
	}, nil
}

// PublicURL derives the public URL for an object key.
func (s *S3Config) PublicURL(objectKey string) string {
	if s.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.PublicBaseURL, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.BucketName, objectKey)
}

// TransformURL derives a public URL with resize/quality transform parameters,
// served by the image proxy in front of the bucket.
func (s *S3Config) TransformURL(objectKey string, width, quality int) string {
	base := s.PublicURL(objectKey)
	v := url.Values{}
	if width > 0 {
		v.Set("width", fmt.Sprintf("%d", width))
	}
	if quality > 0 {
		v.Set("quality", fmt.Sprintf("%d", quality))
	}
	if len(v) == 0 {
		return base
	}
	return base + "?" + v.Encode()
}

// GeneratePresignedURL generates a presigned URL for the given object key with the specified expiration time
func (s *S3Config) GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.Client)
	presignedURL, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", err
	}
	return presignedURL.URL, nil
}
