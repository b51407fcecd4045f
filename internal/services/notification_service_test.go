package services

import (
	"context"
	"testing"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) AutoMigrate() error {
	return m.Called().Error(0)
}

func (m *mockNotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockNotificationRepo) GetByRecipientID(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error) {
	args := m.Called(ctx, recipientID, page, limit)
	return args.Get(0).([]models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *mockNotificationRepo) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id uint, recipientID string) error {
	return m.Called(ctx, id, recipientID).Error(0)
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, recipientID string) error {
	return m.Called(ctx, recipientID).Error(0)
}

func TestNotificationService_ListEnrichesActors(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	ann := &models.User{Name: "Ann", Username: "ann", Email: "ann@example.com"}
	require.NoError(t, users.CreateUser(ctx, ann))

	repo := new(mockNotificationRepo)
	repo.On("GetByRecipientID", ctx, "recipient", 1, 20).Return([]models.Notification{
		{ID: 1, Type: models.NotificationFollow, ActorID: ann.ID.Hex(), RecipientID: "recipient"},
		{ID: 2, Type: models.NotificationLike, ActorID: "deleted-user", RecipientID: "recipient"},
	}, int64(2), nil)

	svc := NewNotificationService(repo, users)
	list, total, err := svc.List(ctx, "recipient", 0, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Actor)
	assert.Equal(t, "ann", list[0].Actor.Username)
	assert.Nil(t, list[1].Actor)
	repo.AssertExpectations(t)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	repo := new(mockNotificationRepo)
	repo.On("MarkAsRead", ctx, uint(7), "ann").Return(nil)
	repo.On("MarkAsRead", ctx, uint(8), "ann").Return(repositories.ErrNotificationNotFound)
	svc := NewNotificationService(repo, newFakeUserRepo())

	assert.NoError(t, svc.MarkAsRead(ctx, 7, "ann"))
	assert.True(t, models.IsKind(svc.MarkAsRead(ctx, 8, "ann"), models.KindNotFound))
	repo.AssertExpectations(t)
}

func TestNotificationService_UnreadCountFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(mockNotificationRepo)
	repo.On("GetUnreadCount", ctx, "ann").Return(int64(0), errBoom)
	svc := NewNotificationService(repo, newFakeUserRepo())

	_, err := svc.UnreadCount(ctx, "ann")

	assert.True(t, models.IsKind(err, models.KindInternal))
}
