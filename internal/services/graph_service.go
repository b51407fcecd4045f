package services

import (
	"context"
	"log/slog"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
)

// Notifier records a notification for another user
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// GraphService flips likes, saves and follows. Each flip is decided by a
// conditional single-document update, so concurrent toggles never double-add.
type GraphService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	tx       repositories.Transactor
	notifier Notifier       // nil when notifications are disabled
	observer ToggleObserver // nil when metrics are disabled
	log      *slog.Logger
}

// NewGraphService creates a new GraphService
func NewGraphService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	tx repositories.Transactor,
	notifier Notifier,
	observer ToggleObserver,
	log *slog.Logger,
) *GraphService {
	return &GraphService{posts: posts, users: users, tx: tx, notifier: notifier, observer: observer, log: log}
}

// ToggleLike likes the post for userID, or removes the like if it was there.
// It returns the updated post and whether it is now liked.
func (s *GraphService) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, bool, error) {
	pid, err := parseID(postID, "Post id is required")
	if err != nil {
		return nil, false, err
	}
	uid, err := parseID(userID, "Invalid user id")
	if err != nil {
		return nil, false, err
	}
	post, err := lookupPost(ctx, s.posts, pid)
	if err != nil {
		return nil, false, err
	}
	if _, err := lookupUser(ctx, s.users, uid, "User not found"); err != nil {
		return nil, false, err
	}

	var liked bool
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		removed, err := s.posts.RemoveLike(ctx, pid, uid)
		if err != nil {
			return err
		}
		if removed {
			liked = false
			_, err = s.users.RemoveFromList(ctx, uid, models.UserListLiked, pid)
			return err
		}
		// a no-op add means a concurrent request already liked it
		if _, err := s.posts.AddLike(ctx, pid, uid); err != nil {
			return err
		}
		liked = true
		_, err = s.users.AddToList(ctx, uid, models.UserListLiked, pid)
		return err
	})
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	s.observe("like", liked)

	if liked && post.Creator != uid {
		s.notify(ctx, &models.Notification{
			Type:            models.NotificationLike,
			ActorID:         userID,
			RecipientID:     post.Creator.Hex(),
			TargetID:        postID,
			TargetType:      "post",
			PreviewImageURL: post.ImageURL,
			Message:         "liked your post",
		})
	}

	updated, err := lookupPost(ctx, s.posts, pid)
	if err != nil {
		return nil, false, err
	}
	return updated, liked, nil
}

// ToggleSave saves the post for userID, or unsaves it. Posts do not track who saved them.
func (s *GraphService) ToggleSave(ctx context.Context, postID, userID string) (bool, error) {
	pid, err := parseID(postID, "Post id is required")
	if err != nil {
		return false, err
	}
	uid, err := parseID(userID, "Invalid user id")
	if err != nil {
		return false, err
	}
	if _, err := lookupPost(ctx, s.posts, pid); err != nil {
		return false, err
	}
	if _, err := lookupUser(ctx, s.users, uid, "User not found"); err != nil {
		return false, err
	}

	var saved bool
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		removed, err := s.users.RemoveFromList(ctx, uid, models.UserListSaved, pid)
		if err != nil {
			return err
		}
		if removed {
			saved = false
			return nil
		}
		saved = true
		_, err = s.users.AddToList(ctx, uid, models.UserListSaved, pid)
		return err
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	s.observe("save", saved)
	return saved, nil
}

// ToggleFollow makes actorID follow targetID, or unfollow if already following.
// It returns whether actorID now follows targetID.
func (s *GraphService) ToggleFollow(ctx context.Context, targetID, actorID string) (bool, error) {
	if targetID == actorID {
		return false, models.NewConflictError("You cannot follow yourself.")
	}
	tid, err := parseID(targetID, "Invalid user id")
	if err != nil {
		return false, err
	}
	aid, err := parseID(actorID, "Invalid user id")
	if err != nil {
		return false, err
	}
	if tid == aid {
		return false, models.NewConflictError("You cannot follow yourself.")
	}

	if _, err := lookupUser(ctx, s.users, tid, "User not found."); err != nil {
		return false, err
	}
	if _, err := lookupUser(ctx, s.users, aid, "Current user not found."); err != nil {
		return false, err
	}

	var following bool
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		removed, err := s.users.RemoveFromList(ctx, tid, models.UserListFollowers, aid)
		if err != nil {
			return err
		}
		if removed {
			following = false
			_, err = s.users.RemoveFromList(ctx, aid, models.UserListFollowings, tid)
			return err
		}
		if _, err := s.users.AddToList(ctx, tid, models.UserListFollowers, aid); err != nil {
			return err
		}
		following = true
		_, err = s.users.AddToList(ctx, aid, models.UserListFollowings, tid)
		return err
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	s.observe("follow", following)

	if following {
		s.notify(ctx, &models.Notification{
			Type:        models.NotificationFollow,
			ActorID:     actorID,
			RecipientID: targetID,
			TargetID:    actorID,
			TargetType:  "user",
			Message:     "started following you",
		})
	}
	return following, nil
}

func (s *GraphService) observe(kind string, on bool) {
	if s.observer != nil {
		s.observer.ObserveToggle(kind, on)
	}
}

// notify never fails the toggle that triggered it
func (s *GraphService) notify(ctx context.Context, n *models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("failed to record notification", "type", n.Type, "recipient_id", n.RecipientID, "error", err)
	}
}

