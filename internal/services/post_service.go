package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostInput carries the fields of a create or edit form. Tags is the JSON array string sent by clients.
type PostInput struct {
	Caption  string
	Tags     string
	Location string
	Image    *ImageUpload
}

// PostService handles post CRUD and post listings
type PostService struct {
	posts repositories.PostRepository
	users repositories.UserRepository
	store storage.ObjectStore
	tx    repositories.Transactor
	log   *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	store storage.ObjectStore,
	tx repositories.Transactor,
	log *slog.Logger,
) *PostService {
	return &PostService{posts: posts, users: users, store: store, tx: tx, log: log}
}

// CreatePost uploads the image, stores the post and records it on the creator
func (s *PostService) CreatePost(ctx context.Context, creatorID string, in PostInput) (*models.PostView, error) {
	creator, err := parseID(creatorID, "Invalid user id")
	if err != nil {
		return nil, err
	}
	tags, err := parseTags(in.Tags)
	if err != nil {
		return nil, err
	}

	obj, err := uploadImage(ctx, s.store, storage.FolderPostImages, in.Image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Creator:  creator,
		Caption:  in.Caption,
		Tags:     tags,
		Location: in.Location,
		ImageURL: obj.URL,
		ImageID:  obj.ID,
	}
	created := false
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.posts.CreatePost(ctx, post); err != nil {
			return err
		}
		created = true
		_, err := s.users.AddToList(ctx, creator, models.UserListPosts, post.ID)
		return err
	})
	if err != nil {
		if created {
			// outside a transaction the post row may have survived
			if delErr := s.posts.DeletePost(ctx, post.ID); delErr != nil && !errors.Is(delErr, repositories.ErrPostNotFound) {
				s.log.Error("failed to remove orphaned post", "post_id", post.ID.Hex(), "error", delErr)
			}
		}
		destroyQuietly(ctx, s.store, s.log, obj.ID, "create post failed")
		return nil, internal(err)
	}

	s.log.Info("post created", "post_id", post.ID.Hex(), "creator_id", creatorID)
	return s.view(ctx, post)
}

// EditPost changes caption, tags and location and optionally swaps the image. Only the creator may edit.
func (s *PostService) EditPost(ctx context.Context, postID, requesterID string, in PostInput) (*models.PostView, error) {
	id, err := parseID(postID, "Invalid post id")
	if err != nil {
		return nil, err
	}
	requester, err := parseID(requesterID, "Invalid user id")
	if err != nil {
		return nil, err
	}
	tags, err := parseTags(in.Tags)
	if err != nil {
		return nil, err
	}

	post, err := lookupPost(ctx, s.posts, id)
	if err != nil {
		return nil, err
	}
	if post.Creator != requester {
		return nil, models.NewForbiddenError("You can only edit your own posts.")
	}

	var replaced *storage.Object
	previousImageID := post.ImageID
	if in.Image != nil {
		replaced, err = uploadImage(ctx, s.store, storage.FolderPostImages, in.Image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = replaced.URL
		post.ImageID = replaced.ID
	}
	post.Caption = in.Caption
	post.Tags = tags
	post.Location = in.Location

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if replaced != nil {
			destroyQuietly(ctx, s.store, s.log, replaced.ID, "edit post failed")
		}
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, models.NewInternalError(err)
	}
	if replaced != nil {
		destroyQuietly(ctx, s.store, s.log, previousImageID, "image replaced")
	}

	return s.view(ctx, post)
}

// DeletePost releases the stored image, removes the post and drops every reference to it. Only the creator may delete.
func (s *PostService) DeletePost(ctx context.Context, postID, requesterID string) error {
	id, err := parseID(postID, "Invalid post id")
	if err != nil {
		return err
	}
	requester, err := parseID(requesterID, "Invalid user id")
	if err != nil {
		return err
	}

	post, err := lookupPost(ctx, s.posts, id)
	if err != nil {
		return err
	}
	if post.Creator != requester {
		return models.NewForbiddenError("You can only delete your own posts.")
	}

	if err := s.store.Destroy(ctx, post.ImageID); err != nil {
		return models.NewInternalError(err)
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.posts.DeletePost(ctx, id); err != nil {
			return err
		}
		return s.users.PullPostReferences(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return models.NewNotFoundError("Post not found")
		}
		return models.NewInternalError(err)
	}

	s.log.Info("post deleted", "post_id", postID, "creator_id", requesterID)
	return nil
}

// GetPostByID returns a post with its creator
func (s *PostService) GetPostByID(ctx context.Context, postID string) (*models.PostView, error) {
	id, err := parseID(postID, "Invalid post id")
	if err != nil {
		return nil, err
	}
	post, err := lookupPost(ctx, s.posts, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, post)
}

// GetRecentPosts returns posts newest first. A zero limit means all posts.
func (s *PostService) GetRecentPosts(ctx context.Context, limit int64) ([]models.PostView, error) {
	posts, err := s.posts.GetRecentPosts(ctx, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.views(ctx, posts)
}

// GetUserPosts returns the posts a user owns, in the order they were created
func (s *PostService) GetUserPosts(ctx context.Context, userID string, limit int64) ([]models.PostView, error) {
	user, err := s.userByHex(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.byIDs(ctx, user.Posts, limit)
}

// GetSavedPosts returns the posts a user has saved
func (s *PostService) GetSavedPosts(ctx context.Context, userID string, limit int64) ([]models.PostView, error) {
	user, err := s.userByHex(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.byIDs(ctx, user.Saved, limit)
}

// GetLikedPosts returns the posts a user has liked
func (s *PostService) GetLikedPosts(ctx context.Context, userID string, limit int64) ([]models.PostView, error) {
	user, err := s.userByHex(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.byIDs(ctx, user.Liked, limit)
}

// SearchPosts finds posts whose caption contains query, ignoring case
func (s *PostService) SearchPosts(ctx context.Context, query string, limit int64) ([]models.PostView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	posts, err := s.posts.SearchPosts(ctx, query, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.views(ctx, posts)
}

// ListPosts returns one page of posts with ids above cursor. An empty cursor starts from the beginning.
func (s *PostService) ListPosts(ctx context.Context, cursor string, limit int64) (*models.PostPage, error) {
	var after *primitive.ObjectID
	if strings.TrimSpace(cursor) != "" {
		id, err := parseID(cursor, "Invalid cursor")
		if err != nil {
			return nil, err
		}
		after = &id
	}

	posts, err := s.posts.ListPosts(ctx, after, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	views, err := s.views(ctx, posts)
	if err != nil {
		return nil, err
	}

	page := &models.PostPage{Documents: views}
	if len(posts) > 0 {
		last := posts[len(posts)-1].ID
		page.NextCursor = &last
	}
	return page, nil
}

// GetRelatedPosts returns other posts by the same creator sharing at least one tag
func (s *PostService) GetRelatedPosts(ctx context.Context, postID string, limit int64) ([]models.PostView, error) {
	id, err := parseID(postID, "Invalid post id")
	if err != nil {
		return nil, err
	}
	post, err := lookupPost(ctx, s.posts, id)
	if err != nil {
		return nil, err
	}

	candidates, err := s.posts.GetPostsByCreator(ctx, post.Creator, 0)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	related := make([]models.Post, 0, len(candidates))
	for i := range candidates {
		if candidates[i].ID == post.ID || !post.SharesTagWith(&candidates[i]) {
			continue
		}
		related = append(related, candidates[i])
		if limit > 0 && int64(len(related)) == limit {
			break
		}
	}
	return s.views(ctx, related)
}

// GetFeed returns posts by the viewer and the users they follow, flagged with the viewer's likes and saves
func (s *PostService) GetFeed(ctx context.Context, viewerID string, limit int64) ([]models.PostView, error) {
	viewer, err := s.userByHex(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	creators := append([]primitive.ObjectID{viewer.ID}, viewer.Followings...)
	posts, err := s.posts.GetPostsByCreators(ctx, creators, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	views, err := s.views(ctx, posts)
	if err != nil {
		return nil, err
	}
	for i := range views {
		liked := views[i].IsLikedBy(viewer.ID)
		saved := viewer.HasSaved(views[i].ID)
		views[i].IsLiked = &liked
		views[i].IsSaved = &saved
	}
	return views, nil
}

func (s *PostService) userByHex(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID, "Invalid user id")
	if err != nil {
		return nil, err
	}
	return lookupUser(ctx, s.users, id, "User not found")
}

func (s *PostService) byIDs(ctx context.Context, ids []primitive.ObjectID, limit int64) ([]models.PostView, error) {
	posts, err := s.posts.GetPostsByIDs(ctx, ids, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.views(ctx, posts)
}

func (s *PostService) view(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := s.views(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views populates the creator of each post
func (s *PostService) views(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	ids := make([]primitive.ObjectID, 0, len(posts))
	seen := make(map[primitive.ObjectID]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.Creator]; !ok {
			seen[p.Creator] = struct{}{}
			ids = append(ids, p.Creator)
		}
	}

	creators, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	byID := make(map[primitive.ObjectID]models.UserCompact, len(creators))
	for i := range creators {
		byID[creators[i].ID] = creators[i].ToCompact()
	}

	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		views[i] = models.PostView{Post: p}
		if c, ok := byID[p.Creator]; ok {
			c := c
			views[i].Creator = &c
		}
	}
	return views, nil
}
