package models

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAppError_Status(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewConflictError("taken"), http.StatusBadRequest},
		{NewAuthError("wrong"), http.StatusBadRequest},
		{NewNotFoundError("missing"), http.StatusNotFound},
		{NewUnauthorizedError("no"), http.StatusUnauthorized},
		{NewForbiddenError("nope"), http.StatusForbidden},
		{NewInternalError(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestAppError_WrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, InternalErrorMessage, err.Message)
	assert.True(t, IsKind(err, KindInternal))
	assert.False(t, IsKind(cause, KindInternal))
}

func TestUser_PasswordNeverSerialized(t *testing.T) {
	u := User{Name: "Ann", Username: "ann", Email: "ann@example.com", Password: "$2a$10$hash"}
	u.Normalize()

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "$2a$10$hash")
	assert.Contains(t, string(raw), `"followers":[]`)
}

func TestPostView_CreatorReplacesID(t *testing.T) {
	creatorID := primitive.NewObjectID()
	post := Post{ID: primitive.NewObjectID(), Creator: creatorID, Caption: "hello world"}
	post.Normalize()
	view := PostView{Post: post, Creator: &UserCompact{ID: creatorID, Name: "Ann", Username: "ann"}}

	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	creator, ok := decoded["creator"].(map[string]any)
	require.True(t, ok, "creator should be an object")
	assert.Equal(t, "ann", creator["username"])
	assert.Equal(t, []any{}, decoded["likes"])
	assert.NotContains(t, decoded, "isLiked")
}

func TestPost_SharesTagWith(t *testing.T) {
	a := &Post{Tags: []string{"travel", "food"}}
	assert.True(t, a.SharesTagWith(&Post{Tags: []string{"food"}}))
	assert.False(t, a.SharesTagWith(&Post{Tags: []string{"cars"}}))
	assert.False(t, a.SharesTagWith(&Post{}))
}
