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

// ProfileUpdate lists the profile fields changed by UpdateProfile. A nil image leaves the avatar untouched.
type ProfileUpdate struct {
	Name     string
	Bio      string
	ImageURL *string
	ImageID  *string
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	GetRecentUsers(ctx context.Context, limit int64) ([]models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error)
	AddToList(ctx context.Context, id primitive.ObjectID, list string, value primitive.ObjectID) (bool, error)
	RemoveFromList(ctx context.Context, id primitive.ObjectID, list string, value primitive.ObjectID) (bool, error)
	PullPostReferences(ctx context.Context, postID primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser inserts a new user. Unique index violations are reported as ErrDuplicateKey.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Normalize()

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByUsername retrieves a user by username
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetUsers retrieves every user in insertion order
func (r *MongoUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{}, options.Find())
}

// GetRecentUsers retrieves users newest first. A zero limit returns all of them.
func (r *MongoUserRepository) GetRecentUsers(ctx context.Context, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

// GetUsersByIDs retrieves the users whose ids are listed, in no particular order
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// SearchUsers matches query literally and case-insensitively against name and username
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": []bson.M{
		{"name": pattern},
		{"username": pattern},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}}).SetLimit(limit)
	return r.find(ctx, filter, opts)
}

// UpdateProfile sets name, bio and optionally the avatar, returning the updated user
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error) {
	set := bson.M{
		"name":      update.Name,
		"bio":       update.Bio,
		"updatedAt": time.Now(),
	}
	if update.ImageURL != nil {
		set["imageUrl"] = *update.ImageURL
	}
	if update.ImageID != nil {
		set["imageId"] = *update.ImageID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	user.Normalize()
	return &user, nil
}

// AddToList adds value to one of the user's relationship lists.
// It reports false when the value was already present or the user does not exist.
func (r *MongoUserRepository) AddToList(ctx context.Context, id primitive.ObjectID, list string, value primitive.ObjectID) (bool, error) {
	if err := checkList(list); err != nil {
		return false, err
	}
	filter := bson.M{"_id": id, list: bson.M{"$ne": value}}
	update := bson.M{
		"$addToSet": bson.M{list: value},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("add to %s: %w", list, err)
	}
	return res.ModifiedCount == 1, nil
}

// RemoveFromList removes value from one of the user's relationship lists.
// It reports false when the value was absent or the user does not exist.
func (r *MongoUserRepository) RemoveFromList(ctx context.Context, id primitive.ObjectID, list string, value primitive.ObjectID) (bool, error) {
	if err := checkList(list); err != nil {
		return false, err
	}
	filter := bson.M{"_id": id, list: value}
	update := bson.M{
		"$pull": bson.M{list: value},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("remove from %s: %w", list, err)
	}
	return res.ModifiedCount == 1, nil
}

// PullPostReferences removes a deleted post from every user's posts, liked and saved lists
func (r *MongoUserRepository) PullPostReferences(ctx context.Context, postID primitive.ObjectID) error {
	filter := bson.M{"$or": []bson.M{
		{models.UserListPosts: postID},
		{models.UserListLiked: postID},
		{models.UserListSaved: postID},
	}}
	update := bson.M{"$pull": bson.M{
		models.UserListPosts: postID,
		models.UserListLiked: postID,
		models.UserListSaved: postID,
	}}
	if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("pull post references: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique username and email indexes
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Normalize()
	return &user, nil
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, nil
}

func checkList(list string) error {
	switch list {
	case models.UserListPosts, models.UserListLiked, models.UserListSaved,
		models.UserListFollowers, models.UserListFollowings:
		return nil
	}
	return fmt.Errorf("unknown user list %q", list)
}
