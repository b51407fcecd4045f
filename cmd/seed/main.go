// Command seed fills a development database with fake users, posts and interactions.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/anonto42/snapgram/backend/pkg/config"
	"github.com/anonto42/snapgram/backend/pkg/logger"
	"github.com/anonto42/snapgram/backend/pkg/storage"
	"github.com/brianvoe/gofakeit/v6"
)

const seedPassword = "Snapgram#2024"

func main() {
	userCount := flag.Int("users", 10, "number of users to create")
	postsPerUser := flag.Int("posts", 3, "number of posts per user")
	seed := flag.Int64("seed", 0, "random seed, 0 picks a random one")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.Env)
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if !cfg.IsDevelopment() {
		log.Error("Refusing to seed outside development", "env", cfg.Env)
		os.Exit(1)
	}

	gofakeit.Seed(*seed)
	ctx := context.Background()

	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Error("Failed to initialize databases", "error", err)
		os.Exit(1)
	}
	defer db.CloseDB()

	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Error("Failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	userRepo := repositories.NewMongoUserRepository(db.Database)
	postRepo := repositories.NewMongoPostRepository(db.Database)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Error("Failed to ensure user indexes", "error", err)
		os.Exit(1)
	}
	if err := postRepo.EnsureIndexes(ctx); err != nil {
		log.Error("Failed to ensure post indexes", "error", err)
		os.Exit(1)
	}
	tx := repositories.NewMongoTransactor(db.Mongo, cfg.MongoTransactions)

	auth := services.NewAuthService(userRepo, services.AuthConfig{Secret: cfg.JWTSecret, TTL: cfg.SessionTTL()}, log)
	posts := services.NewPostService(postRepo, userRepo, store, tx, log)
	graph := services.NewGraphService(postRepo, userRepo, tx, nil, nil, log)

	s := &seeder{auth: auth, posts: posts, graph: graph, log: log}
	if err := s.run(ctx, *userCount, *postsPerUser); err != nil {
		log.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

type seeder struct {
	auth  *services.AuthService
	posts *services.PostService
	graph *services.GraphService
	log   *slog.Logger
}

func (s *seeder) run(ctx context.Context, userCount, postsPerUser int) error {
	var userIDs, postIDs []string

	for i := 0; i < userCount; i++ {
		req := models.SignupRequest{
			Name:     truncate(gofakeit.Name(), 30),
			Username: truncate(fmt.Sprintf("%s%d", gofakeit.Username(), i), 30),
			Email:    gofakeit.Email(),
			Password: seedPassword,
		}
		req.Normalize()

		user, _, err := s.auth.Signup(ctx, req)
		if err != nil {
			if models.IsKind(err, models.KindConflict) {
				s.log.Warn("Skipping duplicate user", "username", req.Username)
				continue
			}
			return fmt.Errorf("create user %s: %w", req.Username, err)
		}
		userIDs = append(userIDs, user.ID.Hex())

		for j := 0; j < postsPerUser; j++ {
			img, err := randomPNG()
			if err != nil {
				return err
			}
			post, err := s.posts.CreatePost(ctx, user.ID.Hex(), services.PostInput{
				Caption:  gofakeit.Sentence(8),
				Tags:     fmt.Sprintf(`[%q, %q]`, gofakeit.Word(), gofakeit.Noun()),
				Location: gofakeit.City(),
				Image:    &services.ImageUpload{Filename: "seed.png", Data: img},
			})
			if err != nil {
				return fmt.Errorf("create post for %s: %w", req.Username, err)
			}
			postIDs = append(postIDs, post.ID.Hex())
		}
	}
	s.log.Info("Created users and posts", "users", len(userIDs), "posts", len(postIDs))

	if len(userIDs) < 2 {
		return nil
	}

	var likes, saves, follows int
	for _, userID := range userIDs {
		for _, postID := range postIDs {
			if gofakeit.Number(1, 100) <= 30 {
				if _, _, err := s.graph.ToggleLike(ctx, postID, userID); err != nil {
					return fmt.Errorf("like: %w", err)
				}
				likes++
			}
			if gofakeit.Number(1, 100) <= 10 {
				if _, err := s.graph.ToggleSave(ctx, postID, userID); err != nil {
					return fmt.Errorf("save: %w", err)
				}
				saves++
			}
		}
		for _, targetID := range userIDs {
			if targetID == userID || gofakeit.Number(1, 100) > 40 {
				continue
			}
			if _, err := s.graph.ToggleFollow(ctx, targetID, userID); err != nil {
				return fmt.Errorf("follow: %w", err)
			}
			follows++
		}
	}
	s.log.Info("Seeded interactions", "likes", likes, "saves", saves, "follows", follows, "password", seedPassword)
	return nil
}

// randomPNG renders a small solid-colour image so uploads pass content sniffing
func randomPNG() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill := color.RGBA{R: gofakeit.Uint8(), G: gofakeit.Uint8(), B: gofakeit.Uint8(), A: 255}
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}
