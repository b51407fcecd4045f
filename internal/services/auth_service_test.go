package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func signupRequest(username, email string) models.SignupRequest {
	return models.SignupRequest{Name: "Ann", Username: username, Email: email, Password: "Passw0rd!"}
}

func TestAuthService_Signup(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	user, token, err := env.auth.Signup(ctx, signupRequest("ann", "ann@example.com"))
	require.NoError(t, err)

	assert.False(t, user.ID.IsZero())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Passw0rd!")))

	userID, err := env.auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), userID)

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
}

func TestAuthService_SignupDuplicates(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, _, err := env.auth.Signup(ctx, signupRequest("ann", "ann@example.com"))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  models.SignupRequest
		want string
	}{
		{"same username", signupRequest("ann", "other@example.com"), "Username is already taken. Please choose another one."},
		{"same email", signupRequest("other", "ann@example.com"), "Email is already registered. Please use another email address."},
		{"both", signupRequest("ann", "ann@example.com"), "Username is already taken. Please choose another one."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.auth.Signup(ctx, tt.req)
			require.Error(t, err)
			appErr, ok := err.(*models.AppError)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, appErr.Status())
			assert.Equal(t, tt.want, appErr.Message)
		})
	}
}

func TestAuthService_SignupRaceOnUniqueIndex(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// simulate a concurrent insert that wins between the lookups and the insert
	env.users.createErr = wrapDuplicate()
	_, _, err := env.auth.Signup(ctx, signupRequest("ann", "ann@example.com"))

	assert.True(t, models.IsKind(err, models.KindConflict))
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	created, _, err := env.auth.Signup(ctx, signupRequest("ann", "ann@example.com"))
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		user, token, err := env.auth.Login(ctx, models.LoginRequest{Email: "ann@example.com", Password: "Passw0rd!"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := env.auth.Login(ctx, models.LoginRequest{Email: "ann@example.com", Password: "Wr0ngPass!"})
		require.Error(t, err)
		assert.True(t, models.IsKind(err, models.KindAuth))
		assert.Equal(t, http.StatusBadRequest, err.(*models.AppError).Status())
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := env.auth.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "Passw0rd!"})
		assert.True(t, models.IsKind(err, models.KindAuth))
	})
}

func TestAuthService_ParseToken(t *testing.T) {
	env := newTestEnv()

	_, err := env.auth.ParseToken("not-a-token")
	assert.Error(t, err)

	other := NewAuthService(env.users, AuthConfig{Secret: "another-secret", TTL: time.Hour}, nil)
	foreign, err := other.IssueToken("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	_, err = env.auth.ParseToken(foreign)
	assert.Error(t, err, "token signed with another secret")

	env.auth.now = func() time.Time { return time.Now().Add(-7 * time.Hour) }
	expired, err := env.auth.IssueToken("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	env.auth.now = time.Now
	_, err = env.auth.ParseToken(expired)
	assert.Error(t, err, "expired token")
}

func TestAuthService_Cookies(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), AuthConfig{Secret: "s", TTL: 24 * time.Hour, Secure: true}, nil)

	cookie := svc.CookieFor("token")
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "token", cookie.Value)
	assert.Equal(t, 86400, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)

	cleared := svc.ClearCookie()
	assert.Equal(t, SessionCookieName, cleared.Name)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}
