package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/pkg/storage"
)

// UserService handles user listings and profile edits
type UserService struct {
	users repositories.UserRepository
	store storage.ObjectStore
	log   *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, store storage.ObjectStore, log *slog.Logger) *UserService {
	return &UserService{users: users, store: store, log: log}
}

// GetUsers returns every user
func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.GetUsers(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// GetRecentUsers returns users newest first. A zero limit means all users.
func (s *UserService) GetRecentUsers(ctx context.Context, limit int64) ([]models.User, error) {
	users, err := s.users.GetRecentUsers(ctx, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// GetUserByID returns one user
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID, "Invalid user id")
	if err != nil {
		return nil, err
	}
	return lookupUser(ctx, s.users, id, "User not found")
}

// SearchUsers finds users whose name or username contains query
func (s *UserService) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	users, err := s.users.SearchUsers(ctx, query, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// UpdateProfile sets name and bio and, when image is given, replaces the avatar
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest, image *ImageUpload) (*models.User, error) {
	id, err := parseID(userID, "Invalid user id")
	if err != nil {
		return nil, err
	}
	current, err := lookupUser(ctx, s.users, id, "User not found.")
	if err != nil {
		return nil, err
	}

	update := repositories.ProfileUpdate{Name: req.Name, Bio: req.Bio}
	var uploaded *storage.Object
	if image != nil {
		uploaded, err = uploadImage(ctx, s.store, storage.FolderProfilePics, image)
		if err != nil {
			return nil, err
		}
		update.ImageURL = &uploaded.URL
		update.ImageID = &uploaded.ID
	}

	user, err := s.users.UpdateProfile(ctx, id, update)
	if err != nil {
		if uploaded != nil {
			destroyQuietly(ctx, s.store, s.log, uploaded.ID, "update profile failed")
		}
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, models.NewNotFoundError("User not found.")
		}
		return nil, models.NewInternalError(err)
	}
	if uploaded != nil {
		destroyQuietly(ctx, s.store, s.log, current.ImageID, "avatar replaced")
	}
	return user, nil
}
