package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageUpload is an image file received from a client
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ToggleObserver is told about every like, save and follow flip
type ToggleObserver interface {
	ObserveToggle(kind string, on bool)
}

// parseID turns a hex id into an ObjectID, failing with a validation error carrying msg
func parseID(hex, msg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, models.NewValidationError(msg)
	}
	return id, nil
}

// parseTags decodes the JSON string array sent with post forms.
// Blank and repeated tags are dropped; an empty input means no tags.
func parseTags(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	var decoded []string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, models.NewValidationError("Tags must be a JSON array of strings.")
	}

	tags := make([]string, 0, len(decoded))
	seen := make(map[string]struct{}, len(decoded))
	for _, t := range decoded {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags, nil
}

// uploadImage checks that img really is an image and stores it under folder
func uploadImage(ctx context.Context, store storage.ObjectStore, folder string, img *ImageUpload) (*storage.Object, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, models.NewValidationError("Image is required")
	}
	mt := mimetype.Detect(img.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, models.NewValidationError("Only image files are allowed.")
	}

	obj, err := store.Upload(ctx, storage.UploadInput{
		Folder:      folder,
		Filename:    img.Filename,
		ContentType: mt.String(),
		Data:        img.Data,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return obj, nil
}

// destroyQuietly releases a stored object, logging instead of failing
func destroyQuietly(ctx context.Context, store storage.ObjectStore, log *slog.Logger, id, reason string) {
	if id == "" {
		return
	}
	if err := store.Destroy(ctx, id); err != nil {
		log.Error("failed to release stored image", "image_id", id, "reason", reason, "error", err)
	}
}

// internal wraps unexpected errors. AppErrors pass through untouched.
func internal(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// lookupUser loads a user, mapping a missing document to a NotFoundError with msg
func lookupUser(ctx context.Context, users repositories.UserRepository, id primitive.ObjectID, msg string) (*models.User, error) {
	user, err := users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, models.NewNotFoundError(msg)
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// lookupPost loads a post, mapping a missing document to a NotFoundError
func lookupPost(ctx context.Context, posts repositories.PostRepository, id primitive.ObjectID) (*models.Post, error) {
	post, err := posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}
