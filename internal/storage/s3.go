package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store is an ObjectStore over a MinIO/S3-compatible endpoint,
// scoped to a single bucket.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store connects to the MinIO server using credentials from
// environment variables and scopes the store to the given bucket.
func NewS3Store(bucket string) (*S3Store, error) {
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	if minioEndpoint == "" || minioAccessKey == "" || minioSecretKey == "" {
		return nil, fmt.Errorf("missing one or more required environment variables: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}

	minioClient, err := minio.New(minioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(minioAccessKey, minioSecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	log.Println("Successfully connected to MinIO endpoint:", minioEndpoint)
	return &S3Store{client: minioClient, bucket: bucket}, nil
}

// EnsureBucket creates the store's bucket if it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context, location string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %v", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: location}); err != nil {
			return err
		}
	}
	return nil
}

// Put stores data under key. With overwrite=false, an existing object
// is detected with a StatObject probe before writing; the tiny window
// between probe and put is the accepted residual race for
// same-millisecond duplicate uploads.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string, overwrite bool) error {
	if !overwrite {
		_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
		if err == nil {
			return ErrKeyExists
		}
		// Anything other than "no such key" means the probe itself failed.
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return fmt.Errorf("failed to check for existing object: %v", err)
		}
	}

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("failed to store object %q: %v", key, err)
	}
	return nil
}

// Get returns the full object bytes for key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %v", key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read object %q: %v", key, err)
	}
	return data, nil
}

// Stat probes for the existence of key.
func (s *S3Store) Stat(ctx context.Context, key string) error {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("failed to stat object %q: %v", key, err)
}

// List returns all keys under prefix.
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var found []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %v", prefix, object.Err)
		}
		found = append(found, object.Key)
	}
	return found, nil
}

// Delete removes the given keys one by one. The first failure aborts
// the batch.
func (s *S3Store) Delete(ctx context.Context, objectKeys ...string) error {
	for _, key := range objectKeys {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove object %q: %v", key, err)
		}
	}
	return nil
}

// SignedURL issues a presigned GET for key with the given TTL. The key
// is stat-ed first: presigning alone never touches the store, so this
// is where a missing variant surfaces as ErrNotFound.
func (s *S3Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := s.Stat(ctx, key); err != nil {
		return "", err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %q: %v", key, err)
	}
	return u.String(), nil
}

// PublicURL returns the direct endpoint URL for key.
func (s *S3Store) PublicURL(key string) string {
	u := *s.client.EndpointURL()
	u.Path = "/" + s.bucket + "/" + key
	return u.String()
}
