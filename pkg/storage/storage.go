// Package storage stores image payloads in an external object store and hands back a public URL plus an opaque id.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/anonto42/snapgram/backend/pkg/config"
	"github.com/anonto42/snapgram/backend/pkg/firebase"
	"github.com/google/uuid"
)

// Folders used for uploaded media
const (
	FolderPostImages  = "post_images"
	FolderProfilePics = "profile_pics"
)

// UploadInput is a binary payload to be stored
type UploadInput struct {
	Folder      string
	Filename    string
	ContentType string
	Data        []byte
}

// Object is a stored payload. ID is what Destroy expects.
type Object struct {
	URL string
	ID  string
}

// ObjectStore is the external media host
type ObjectStore interface {
	Upload(ctx context.Context, in UploadInput) (*Object, error)
	Destroy(ctx context.Context, id string) error
}

// New builds the object store selected by cfg.StorageDriver
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverS3:
		return NewS3Store(S3Options{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Endpoint:        cfg.AWSEndpoint,
			UseSSL:          cfg.S3UseSSL != "false",
			Bucket:          cfg.S3BucketName,
		})
	case config.StorageDriverFirebase:
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
		if err != nil {
			return nil, err
		}
		return NewFirebaseStore(app.Bucket, app.BucketName), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ObjectKey returns a collision-free key under folder, keeping the original file extension
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	key := uuid.NewString() + ext
	if folder == "" {
		return key
	}
	return folder + "/" + key
}

// Observer is told about every storage call and its outcome
type Observer func(operation string, err error)

type observedStore struct {
	next ObjectStore
	obs  Observer
}

// Observe wraps store so each Upload and Destroy is reported to obs
func Observe(store ObjectStore, obs Observer) ObjectStore {
	return &observedStore{next: store, obs: obs}
}

func (s *observedStore) Upload(ctx context.Context, in UploadInput) (*Object, error) {
	obj, err := s.next.Upload(ctx, in)
	s.obs("upload", err)
	return obj, err
}

func (s *observedStore) Destroy(ctx context.Context, id string) error {
	err := s.next.Destroy(ctx, id)
	s.obs("destroy", err)
	return err
}
