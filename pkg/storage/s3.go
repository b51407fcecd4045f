package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Options configures an S3 (or MinIO) backed store
type S3Options struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // set for MinIO; empty means AWS
	UseSSL          bool
	Bucket          string
}

// S3Store keeps objects in a single S3 bucket
type S3Store struct {
	client   s3iface.S3API
	bucket   string
	endpoint string
	useSSL   bool
	region   string
}

// NewS3Store creates the client and makes sure the bucket exists
func NewS3Store(opts S3Options) (*S3Store, error) {
	awsConfig := &aws.Config{
		Region: aws.String(opts.Region),
		Credentials: credentials.NewStaticCredentials(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		),
	}

	// Support MinIO for local development
	if opts.Endpoint != "" {
		awsConfig.Endpoint = aws.String(opts.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(!opts.UseSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	store := NewS3StoreWithClient(s3.New(sess), opts)

	if _, err := store.client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(opts.Bucket)}); err != nil {
		if _, err := store.client.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(opts.Bucket)}); err != nil {
			return nil, fmt.Errorf("bucket %q is not reachable and could not be created: %w", opts.Bucket, err)
		}
	}
	return store, nil
}

// NewS3StoreWithClient wraps an existing S3 client
func NewS3StoreWithClient(client s3iface.S3API, opts S3Options) *S3Store {
	return &S3Store{
		client:   client,
		bucket:   opts.Bucket,
		endpoint: opts.Endpoint,
		useSSL:   opts.UseSSL,
		region:   opts.Region,
	}
}

// Upload puts the payload under a fresh key in the bucket
func (s *S3Store) Upload(ctx context.Context, in UploadInput) (*Object, error) {
	key := ObjectKey(in.Folder, in.Filename)

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(in.Data),
		ContentType: aws.String(in.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return &Object{URL: s.objectURL(key), ID: key}, nil
}

// Destroy removes the object with the given key
func (s *S3Store) Destroy(ctx context.Context, id string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *S3Store) objectURL(key string) string {
	if s.endpoint != "" && !strings.Contains(s.endpoint, "amazonaws.com") {
		// MinIO URL format
		protocol := "http"
		if s.useSSL {
			protocol = "https"
		}
		host := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "http://"), "https://")
		return fmt.Sprintf("%s://%s/%s/%s", protocol, host, s.bucket, key)
	}

	region := s.region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, region, key)
}
