package services

import (
	"context"
	"testing"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserService_Listings(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.createUser(t, "ann")
	env.createUser(t, "bob")
	cat := env.createUser(t, "cat")

	all, err := env.user.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	recent, err := env.user.GetRecentUsers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, cat.ID, recent[0].ID)

	found, err := env.user.SearchUsers(ctx, "BO", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bob", found[0].Username)

	_, err = env.user.SearchUsers(ctx, "", 0)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestUserService_GetUserByID(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ann := env.createUser(t, "ann")

	got, err := env.user.GetUserByID(ctx, ann.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Username)

	_, err = env.user.GetUserByID(ctx, primitive.NewObjectID().Hex())
	assert.True(t, models.IsKind(err, models.KindNotFound))

	_, err = env.user.GetUserByID(ctx, "zzz")
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ann := env.createUser(t, "ann")

	updated, err := env.user.UpdateProfile(ctx, ann.ID.Hex(), models.UpdateProfileRequest{Name: "Ann B", Bio: "hi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ann B", updated.Name)
	assert.Equal(t, "hi", updated.Bio)
	assert.Empty(t, env.store.uploads)

	withAvatar, err := env.user.UpdateProfile(ctx, ann.ID.Hex(), models.UpdateProfileRequest{Name: "Ann B"},
		&ImageUpload{Filename: "me.png", Data: pngBytes(t)})
	require.NoError(t, err)
	require.Len(t, env.store.uploads, 1)
	assert.Equal(t, storage.FolderProfilePics, env.store.uploads[0].Folder)
	firstAvatar := withAvatar.ImageID
	assert.NotEmpty(t, firstAvatar)
	assert.Empty(t, env.store.destroyed, "no previous avatar to release")

	replaced, err := env.user.UpdateProfile(ctx, ann.ID.Hex(), models.UpdateProfileRequest{Name: "Ann B"},
		&ImageUpload{Filename: "me2.png", Data: pngBytes(t)})
	require.NoError(t, err)
	assert.NotEqual(t, firstAvatar, replaced.ImageID)
	assert.Equal(t, []string{firstAvatar}, env.store.destroyed)
}

func TestUserService_UpdateProfileUnknownUser(t *testing.T) {
	env := newTestEnv()

	_, err := env.user.UpdateProfile(context.Background(), primitive.NewObjectID().Hex(), models.UpdateProfileRequest{Name: "x"}, nil)

	assert.True(t, models.IsKind(err, models.KindNotFound))
}
