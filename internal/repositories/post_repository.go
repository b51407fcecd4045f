package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID, limit int64) ([]models.Post, error)
	GetRecentPosts(ctx context.Context, limit int64) ([]models.Post, error)
	GetPostsByCreator(ctx context.Context, creatorID primitive.ObjectID, limit int64) ([]models.Post, error)
	GetPostsByCreators(ctx context.Context, creatorIDs []primitive.ObjectID, limit int64) ([]models.Post, error)
	SearchPosts(ctx context.Context, query string, limit int64) ([]models.Post, error)
	ListPosts(ctx context.Context, cursor *primitive.ObjectID, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

var recentFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Normalize()

	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	post.Normalize()
	return &post, nil
}

// GetPostsByIDs retrieves posts in the order their ids are listed. Ids that no longer resolve are skipped.
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID, limit int64) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	found, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	posts := make([]models.Post, 0, len(found))
	for _, id := range ids {
		if limit > 0 && int64(len(posts)) == limit {
			break
		}
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// GetRecentPosts retrieves posts newest first. A zero limit returns all of them.
func (r *MongoPostRepository) GetRecentPosts(ctx context.Context, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(recentFirst).SetLimit(limit))
}

// GetPostsByCreator retrieves one user's posts newest first
func (r *MongoPostRepository) GetPostsByCreator(ctx context.Context, creatorID primitive.ObjectID, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{"creator": creatorID}, options.Find().SetSort(recentFirst).SetLimit(limit))
}

// GetPostsByCreators retrieves posts by any of the given users newest first
func (r *MongoPostRepository) GetPostsByCreators(ctx context.Context, creatorIDs []primitive.ObjectID, limit int64) ([]models.Post, error) {
	if len(creatorIDs) == 0 {
		return []models.Post{}, nil
	}
	filter := bson.M{"creator": bson.M{"$in": creatorIDs}}
	return r.find(ctx, filter, options.Find().SetSort(recentFirst).SetLimit(limit))
}

// SearchPosts matches query as a literal, case-insensitive substring of the caption
func (r *MongoPostRepository) SearchPosts(ctx context.Context, query string, limit int64) ([]models.Post, error) {
	filter := bson.M{"caption": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}}
	return r.find(ctx, filter, options.Find().SetSort(recentFirst).SetLimit(limit))
}

// ListPosts returns up to limit posts with ids strictly greater than cursor, in ascending id order
func (r *MongoPostRepository) ListPosts(ctx context.Context, cursor *primitive.ObjectID, limit int64) ([]models.Post, error) {
	filter := bson.M{}
	if cursor != nil {
		filter["_id"] = bson.M{"$gt": *cursor}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(limit)
	return r.find(ctx, filter, opts)
}

// UpdatePost overwrites the editable fields of a post
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	post.Normalize()
	update := bson.M{
		"$set": bson.M{
			"caption":   post.Caption,
			"tags":      post.Tags,
			"location":  post.Location,
			"imageUrl":  post.ImageURL,
			"imageId":   post.ImageID,
			"updatedAt": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// AddLike adds userID to the post's likes, reporting false if it was already there
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": postID, "likes": bson.M{"$ne": userID}}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil {
		return false, fmt.Errorf("add like: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// RemoveLike removes userID from the post's likes, reporting false if it was absent
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": postID, "likes": userID}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return false, fmt.Errorf("remove like: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// EnsureIndexes creates the creator and createdAt indexes
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "creator", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create post indexes: %w", err)
	}
	return nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}
