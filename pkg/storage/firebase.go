package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
)

// FirebaseStore keeps objects in a Firebase (Google Cloud) Storage bucket
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseStore wraps the bucket opened by pkg/firebase
func NewFirebaseStore(bucket *gcs.BucketHandle, bucketName string) *FirebaseStore {
	return &FirebaseStore{bucket: bucket, bucketName: bucketName}
}

// Upload streams the payload to a new object and returns its public URL
func (s *FirebaseStore) Upload(ctx context.Context, in UploadInput) (*Object, error) {
	key := ObjectKey(in.Folder, in.Filename)

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = in.ContentType
	if _, err := w.Write(in.Data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to write object to firebase storage: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to upload file to firebase storage: %w", err)
	}

	return &Object{URL: publicURL(s.bucketName, key), ID: key}, nil
}

// Destroy deletes the object. A missing object is not an error.
func (s *FirebaseStore) Destroy(ctx context.Context, id string) error {
	err := s.bucket.Object(id).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete file from firebase storage: %w", err)
	}
	return nil
}

func publicURL(bucket, key string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", bucket, url.PathEscape(key))
}
