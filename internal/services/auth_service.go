package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "jwt"

const bcryptCost = 10

// AuthConfig configures token signing and the session cookie
type AuthConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// AuthService handles signup, login and session tokens
type AuthService struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
	log    *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users repositories.UserRepository, cfg AuthConfig, log *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		secure: cfg.Secure,
		now:    time.Now,
		log:    log,
	}
}

// Signup registers a new user and returns it together with a session token.
// req must already be normalized and validated.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error) {
	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, "", models.NewConflictError("Username is already taken. Please choose another one.")
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, "", models.NewInternalError(err)
	}

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, "", models.NewConflictError("Email is already registered. Please use another email address.")
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, "", models.NewInternalError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, "", models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, "", models.NewConflictError("Username or email is already taken.")
		}
		return nil, "", models.NewInternalError(err)
	}

	token, err := s.IssueToken(user.ID.Hex())
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	s.log.Info("user signed up", "user_id", user.ID.Hex())
	return user, token, nil
}

// Login checks the credentials and returns the user with a fresh session token
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", models.NewAuthError("User not found. Please check your email or sign up.")
		}
		return nil, "", models.NewInternalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, "", models.NewAuthError("Incorrect password. Please try again.")
	}

	token, err := s.IssueToken(user.ID.Hex())
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// IssueToken signs a session token bound to userID
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken verifies a session token and returns the user id it carries
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserID == "" {
		return "", errors.New("invalid token claims")
	}
	return claims.UserID, nil
}

// CookieFor wraps a session token in the http-only session cookie
func (s *AuthService) CookieFor(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		Expires:  s.now().Add(s.ttl),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns a cookie that removes the session cookie
func (s *AuthService) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
