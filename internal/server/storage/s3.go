package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// Settings configures the S3-compatible backend (MinIO in development).
type Settings struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3ImageStore stores post images in a single bucket under date-partitioned
// random keys.
type S3ImageStore struct {
	settings Settings
}

func NewS3ImageStore(settings Settings) *S3ImageStore {
	return &S3ImageStore{settings: settings}
}

// randomStorageKey builds a collision-free object key, keeping the original
// file extension so the object is served with a sensible type.
func randomStorageKey(filename string) string {
	d := time.Now()
	return fmt.Sprintf("blog_posts/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), path.Ext(filename))
}

func (s *S3ImageStore) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.settings.AccessKey,
			s.settings.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.settings.BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Upload puts the image into the bucket and returns its public URL.
func (s *S3ImageStore) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.settings.Bucket
	key := randomStorageKey(filename)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("image upload error: %w", err)
	}

	return s.objectURL(key), nil
}

func (s *S3ImageStore) objectURL(key string) string {
	base := strings.TrimSuffix(s.settings.BaseEndpoint, "/")
	return fmt.Sprintf("%s/%s/%s", base, s.settings.Bucket, key)
}
