package repositories

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDuplicateKey         = errors.New("duplicate key")
)
