package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is an image post stored in the MongoDB posts collection
type Post struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Creator   primitive.ObjectID   `json:"creator" bson:"creator"`
	Caption   string               `json:"caption" bson:"caption"`
	Tags      []string             `json:"tags" bson:"tags"`
	ImageURL  string               `json:"imageUrl" bson:"imageUrl"`
	ImageID   string               `json:"imageId" bson:"imageId"` // object storage id
	Location  string               `json:"location" bson:"location"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Normalize replaces nil lists with empty ones so they serialize as []
func (p *Post) Normalize() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
}

// IsLikedBy reports whether userID is in the post's likes
func (p *Post) IsLikedBy(userID primitive.ObjectID) bool {
	return containsID(p.Likes, userID)
}

// SharesTagWith reports whether the two posts have at least one tag in common
func (p *Post) SharesTagWith(other *Post) bool {
	for _, t := range p.Tags {
		for _, o := range other.Tags {
			if t == o {
				return true
			}
		}
	}
	return false
}

// PostView is a post with its creator populated. In JSON, Creator replaces the bare creator id.
type PostView struct {
	Post
	Creator *UserCompact `json:"creator"`
	IsLiked *bool        `json:"isLiked,omitempty"`
	IsSaved *bool        `json:"isSaved,omitempty"`
}

// CreatePostRequest carries the text fields of the multipart POST /api/posts form
type CreatePostRequest struct {
	Caption  string `form:"caption" validate:"required,min=5,max=2200"`
	Tags     string `form:"tags"` // JSON array encoded as a string
	Location string `form:"location" validate:"required,min=1,max=1000"`
}

// UpdatePostRequest carries the text fields of the multipart PUT /api/posts/:postId form
type UpdatePostRequest = CreatePostRequest

// PostPage is one page of cursor pagination. NextCursor is nil when the page is empty.
type PostPage struct {
	Documents  []PostView          `json:"documents"`
	NextCursor *primitive.ObjectID `json:"nextCursor"`
}
