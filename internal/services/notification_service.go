package services

import (
	"context"
	"errors"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService handles notification business logic
type NotificationService struct {
	repo  repositories.NotificationRepository
	users repositories.UserRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, users: users}
}

// Notify stores a notification
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	return s.repo.CreateNotification(ctx, n)
}

// List returns one page of the recipient's notifications, newest first, with actor profiles
func (s *NotificationService) List(ctx context.Context, recipientID string, page, limit int) ([]models.EnrichedNotification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	notifications, total, err := s.repo.GetByRecipientID(ctx, recipientID, page, limit)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	actorIDs := make([]primitive.ObjectID, 0, len(notifications))
	for _, n := range notifications {
		if id, err := primitive.ObjectIDFromHex(n.ActorID); err == nil {
			actorIDs = append(actorIDs, id)
		}
	}
	actors, err := s.users.GetUsersByIDs(ctx, actorIDs)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	byID := make(map[string]models.UserCompact, len(actors))
	for i := range actors {
		byID[actors[i].ID.Hex()] = actors[i].ToCompact()
	}

	enriched := make([]models.EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = models.EnrichedNotification{Notification: n}
		if actor, ok := byID[n.ActorID]; ok {
			actor := actor
			enriched[i].Actor = &actor
		}
	}
	return enriched, total, nil
}

// UnreadCount returns how many notifications the recipient has not read
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.repo.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// MarkAsRead marks one of the recipient's notifications as read
func (s *NotificationService) MarkAsRead(ctx context.Context, id uint, recipientID string) error {
	if err := s.repo.MarkAsRead(ctx, id, recipientID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return models.NewNotFoundError("Notification not found")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// MarkAllAsRead marks every notification of the recipient as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, recipientID string) error {
	if err := s.repo.MarkAllAsRead(ctx, recipientID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
