package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/pkg/logger"
	"github.com/anonto42/snapgram/backend/pkg/storage"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserRepo is an in-memory repositories.UserRepository
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	order []primitive.ObjectID

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Posts = append([]primitive.ObjectID{}, u.Posts...)
	c.Liked = append([]primitive.ObjectID{}, u.Liked...)
	c.Saved = append([]primitive.ObjectID{}, u.Saved...)
	c.Followers = append([]primitive.ObjectID{}, u.Followers...)
	c.Followings = append([]primitive.ObjectID{}, u.Followings...)
	return &c
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repositories.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.Normalize()
	r.users[user.ID] = cloneUser(user)
	r.order = append(r.order, user.ID)
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) findBy(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) all() []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *cloneUser(r.users[id]))
	}
	return out
}

func (r *fakeUserRepo) GetUsers(_ context.Context) ([]models.User, error) {
	return r.all(), nil
}

func (r *fakeUserRepo) GetRecentUsers(_ context.Context, limit int64) ([]models.User, error) {
	users := r.all()
	for i, j := 0, len(users)-1; i < j; i, j = i+1, j-1 {
		users[i], users[j] = users[j], users[i]
	}
	if limit > 0 && int64(len(users)) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *fakeUserRepo) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SearchUsers(_ context.Context, query string, limit int64) ([]models.User, error) {
	q := strings.ToLower(query)
	out := []models.User{}
	for _, u := range r.all() {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(u.Username, q) {
			out = append(out, u)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, update repositories.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	u.Name = update.Name
	u.Bio = update.Bio
	if update.ImageURL != nil {
		u.ImageURL = *update.ImageURL
	}
	if update.ImageID != nil {
		u.ImageID = *update.ImageID
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) list(u *models.User, list string) *[]primitive.ObjectID {
	switch list {
	case models.UserListPosts:
		return &u.Posts
	case models.UserListLiked:
		return &u.Liked
	case models.UserListSaved:
		return &u.Saved
	case models.UserListFollowers:
		return &u.Followers
	case models.UserListFollowings:
		return &u.Followings
	}
	panic("unknown list " + list)
}

func (r *fakeUserRepo) AddToList(_ context.Context, id primitive.ObjectID, list string, value primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, nil
	}
	l := r.list(u, list)
	for _, v := range *l {
		if v == value {
			return false, nil
		}
	}
	*l = append(*l, value)
	return true, nil
}

func (r *fakeUserRepo) RemoveFromList(_ context.Context, id primitive.ObjectID, list string, value primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, nil
	}
	l := r.list(u, list)
	for i, v := range *l {
		if v == value {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) PullPostReferences(ctx context.Context, postID primitive.ObjectID) error {
	for _, id := range append([]primitive.ObjectID{}, r.order...) {
		for _, list := range []string{models.UserListPosts, models.UserListLiked, models.UserListSaved} {
			if _, err := r.RemoveFromList(ctx, id, list, postID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *fakeUserRepo) EnsureIndexes(context.Context) error { return nil }

// fakePostRepo is an in-memory repositories.PostRepository
type fakePostRepo struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]*models.Post

	createErr error
	updateErr error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[primitive.ObjectID]*models.Post{}}
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.Likes = append([]primitive.ObjectID{}, p.Likes...)
	return &c
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	post.Normalize()
	r.posts[post.ID] = clonePost(post)
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	return clonePost(p), nil
}

// sorted returns all posts by ascending id, which is creation order
func (r *fakePostRepo) sorted() []models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, *clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

func newestFirst(posts []models.Post, limit int64) []models.Post {
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
	if limit > 0 && int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts
}

func (r *fakePostRepo) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID, limit int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Post{}
	for _, id := range ids {
		if limit > 0 && int64(len(out)) == limit {
			break
		}
		if p, ok := r.posts[id]; ok {
			out = append(out, *clonePost(p))
		}
	}
	return out, nil
}

func (r *fakePostRepo) GetRecentPosts(_ context.Context, limit int64) ([]models.Post, error) {
	return newestFirst(r.sorted(), limit), nil
}

func (r *fakePostRepo) filter(match func(models.Post) bool) []models.Post {
	out := []models.Post{}
	for _, p := range r.sorted() {
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *fakePostRepo) GetPostsByCreator(_ context.Context, creatorID primitive.ObjectID, limit int64) ([]models.Post, error) {
	return newestFirst(r.filter(func(p models.Post) bool { return p.Creator == creatorID }), limit), nil
}

func (r *fakePostRepo) GetPostsByCreators(_ context.Context, creatorIDs []primitive.ObjectID, limit int64) ([]models.Post, error) {
	wanted := map[primitive.ObjectID]bool{}
	for _, id := range creatorIDs {
		wanted[id] = true
	}
	return newestFirst(r.filter(func(p models.Post) bool { return wanted[p.Creator] }), limit), nil
}

func (r *fakePostRepo) SearchPosts(_ context.Context, query string, limit int64) ([]models.Post, error) {
	q := strings.ToLower(query)
	return newestFirst(r.filter(func(p models.Post) bool {
		return strings.Contains(strings.ToLower(p.Caption), q)
	}), limit), nil
}

func (r *fakePostRepo) ListPosts(_ context.Context, cursor *primitive.ObjectID, limit int64) ([]models.Post, error) {
	out := r.filter(func(p models.Post) bool { return cursor == nil || p.ID.Hex() > cursor.Hex() })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepo) UpdatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.posts[post.ID]; !ok {
		return repositories.ErrPostNotFound
	}
	r.posts[post.ID] = clonePost(post)
	return nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) AddLike(_ context.Context, postID, userID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok || p.IsLikedBy(userID) {
		return false, nil
	}
	p.Likes = append(p.Likes, userID)
	return true, nil
}

func (r *fakePostRepo) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, nil
	}
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePostRepo) EnsureIndexes(context.Context) error { return nil }

// recordingStore is a storage.ObjectStore that remembers every call
type recordingStore struct {
	mu        sync.Mutex
	uploads   []storage.UploadInput
	destroyed []string
	live      map[string]bool

	uploadErr  error
	destroyErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{live: map[string]bool{}}
}

func (s *recordingStore) Upload(_ context.Context, in storage.UploadInput) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	s.uploads = append(s.uploads, in)
	id := fmt.Sprintf("%s/obj-%d", in.Folder, len(s.uploads))
	s.live[id] = true
	return &storage.Object{URL: "https://cdn.example/" + id, ID: id}, nil
}

func (s *recordingStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyErr != nil {
		return s.destroyErr
	}
	s.destroyed = append(s.destroyed, id)
	delete(s.live, id)
	return nil
}

// recordingNotifier collects notifications, optionally failing every call
type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, notification *models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, *notification)
	return nil
}

type toggleCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *toggleCounter) ObserveToggle(kind string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[fmt.Sprintf("%s:%t", kind, on)]++
}

var errBoom = errors.New("boom")

// pngBytes returns a tiny valid PNG image
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// testEnv wires every service over in-memory fakes
type testEnv struct {
	users    *fakeUserRepo
	posts    *fakePostRepo
	store    *recordingStore
	notifier *recordingNotifier
	toggles  *toggleCounter

	auth  *AuthService
	post  *PostService
	graph *GraphService
	user  *UserService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:    newFakeUserRepo(),
		posts:    newFakePostRepo(),
		store:    newRecordingStore(),
		notifier: &recordingNotifier{},
		toggles:  &toggleCounter{},
	}
	log := logger.Discard()
	tx := repositories.NewMongoTransactor(nil, false)
	env.auth = NewAuthService(env.users, AuthConfig{Secret: "test-secret", TTL: 6 * time.Hour}, log)
	env.post = NewPostService(env.posts, env.users, env.store, tx, log)
	env.graph = NewGraphService(env.posts, env.users, tx, env.notifier, env.toggles, log)
	env.user = NewUserService(env.users, env.store, log)
	return env
}

func (env *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Name: strings.ToUpper(username[:1]) + username[1:], Username: username, Email: username + "@example.com"}
	require.NoError(t, env.users.CreateUser(context.Background(), u))
	return u
}

func (env *testEnv) createPost(t *testing.T, creator *models.User, caption string, tags ...string) *models.PostView {
	t.Helper()
	raw := "[]"
	if len(tags) > 0 {
		raw = `["` + strings.Join(tags, `","`) + `"]`
	}
	view, err := env.post.CreatePost(context.Background(), creator.ID.Hex(), PostInput{
		Caption:  caption,
		Tags:     raw,
		Location: "Dhaka",
		Image:    &ImageUpload{Filename: "photo.png", Data: pngBytes(t)},
	})
	require.NoError(t, err)
	return view
}

func wrapDuplicate() error {
	return fmt.Errorf("create user: %w", repositories.ErrDuplicateKey)
}
