package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a Snapgram account stored in the MongoDB users collection
type User struct {
	ID         primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name       string               `json:"name" bson:"name"`
	Username   string               `json:"username" bson:"username"` // unique, stored lower-cased
	Email      string               `json:"email" bson:"email"`       // unique
	Password   string               `json:"-" bson:"password"`        // bcrypt hash, never serialized
	Bio        string               `json:"bio" bson:"bio"`
	ImageURL   string               `json:"imageUrl" bson:"imageUrl"`
	ImageID    string               `json:"imageId" bson:"imageId"`
	Posts      []primitive.ObjectID `json:"posts" bson:"posts"`
	Liked      []primitive.ObjectID `json:"liked" bson:"liked"`
	Saved      []primitive.ObjectID `json:"saved" bson:"saved"`
	Followers  []primitive.ObjectID `json:"followers" bson:"followers"`
	Followings []primitive.ObjectID `json:"followings" bson:"followings"`
	CreatedAt  time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Relationship lists embedded in a user document
const (
	UserListPosts      = "posts"
	UserListLiked      = "liked"
	UserListSaved      = "saved"
	UserListFollowers  = "followers"
	UserListFollowings = "followings"
)

// Normalize replaces nil relationship lists with empty ones so they serialize as []
func (u *User) Normalize() {
	if u.Posts == nil {
		u.Posts = []primitive.ObjectID{}
	}
	if u.Liked == nil {
		u.Liked = []primitive.ObjectID{}
	}
	if u.Saved == nil {
		u.Saved = []primitive.ObjectID{}
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Followings == nil {
		u.Followings = []primitive.ObjectID{}
	}
}

// HasSaved reports whether postID is in the user's saved list
func (u *User) HasSaved(postID primitive.ObjectID) bool {
	return containsID(u.Saved, postID)
}

// HasLiked reports whether postID is in the user's liked list
func (u *User) HasLiked(postID primitive.ObjectID) bool {
	return containsID(u.Liked, postID)
}

// UserCompact is the public subset of a user embedded in posts and notifications
type UserCompact struct {
	ID       primitive.ObjectID `json:"_id"`
	Name     string             `json:"name"`
	Username string             `json:"username"`
	ImageURL string             `json:"imageUrl"`
}

// ToCompact converts a user to its compact form
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		ImageURL: u.ImageURL,
	}
}

// SignupRequest is the body of POST /api/auth/signup
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=30"`
	Username string `json:"username" validate:"required,min=1,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,strongpassword"`
}

// Normalize trims the text fields and lower-cases the username
func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	r.Email = strings.TrimSpace(r.Email)
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,strongpassword"`
}

// UpdateProfileRequest carries the text fields of PUT /api/user/update-profile
type UpdateProfileRequest struct {
	Name string `form:"name" validate:"required,min=1,max=30"`
	Bio  string `form:"bio" validate:"max=2200"`
}

// Normalize trims the text fields
func (r *UpdateProfileRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Bio = strings.TrimSpace(r.Bio)
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
