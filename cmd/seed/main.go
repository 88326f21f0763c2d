// Package main provides a tool to seed the document store with sample community data.
//
// It creates a handful of parents, posts across the common categories and a
// few comment threads, then prints a bearer token for every seeded user so
// the API can be exercised by hand.
//
// Usage:
//
//	DB_URI=mongodb://localhost:27017 go run ./cmd/seed
//	DB_URI=mongodb://localhost:27017 go run ./cmd/seed -posts 40
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/mommylounge/lounge-server/internal/auth"
	"github.com/mommylounge/lounge-server/internal/bus"
	"github.com/mommylounge/lounge-server/internal/config"
	"github.com/mommylounge/lounge-server/internal/domain"
	"github.com/mommylounge/lounge-server/internal/dto"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/service"
	"github.com/mommylounge/lounge-server/internal/sse"
	"github.com/mommylounge/lounge-server/internal/store"
	"github.com/mommylounge/lounge-server/internal/validation"
)

var (
	postCount    = flag.Int("posts", 12, "Number of posts to create")
	commentCount = flag.Int("comments", 3, "Maximum comments per post")
)

var seedUsers = []domain.Principal{
	{ID: "seed-maya", DisplayName: "Maya R."},
	{ID: "seed-jordan", DisplayName: "Jordan P."},
	{ID: "seed-sam", DisplayName: "Sam K."},
	{ID: "seed-lee", DisplayName: "Lee T."},
}

var seedCategories = []string{"Pregnancy", "Baby", "Toddler", "Sleep", "Feeding", "Self-care"}

var seedTitles = []string{
	"Is this normal at %s?",
	"What finally worked for us (%s)",
	"Looking for advice: %s",
	"Small win today, %s edition",
}

var seedReplies = []string{
	"Same here, it got better after a couple of weeks.",
	"Have you asked your pediatrician? Ours had good tips.",
	"Sending hugs. You are doing great.",
	"We tried a white noise machine and it helped a lot.",
}

func main() {
	flag.Parse()

	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.IsMemory() {
		fmt.Fprintln(os.Stderr, "Warning: memory:// store is discarded when the seeder exits")
	}

	lg := logger.New(logger.Config{Level: logger.ParseLevel("warn"), Environment: cfg.App.Environment})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Printf("Opening database %s (%s)\n", cfg.Database.Name, cfg.Database.URI)

	st, err := store.Open(ctx, cfg.Database, lg.Logger)
	if err != nil {
		lg.Fatal("Failed to open store", "error", err)
	}
	defer st.Close()

	key, err := auth.LoadOrGenerateKey(cfg.Auth.DataPath)
	if err != nil {
		lg.Fatal("Failed to load auth key", "path", cfg.Auth.DataPath, "error", err)
	}
	tokens, err := auth.NewTokenServiceFromBytes(key, cfg.Auth.AccessTokenDuration)
	if err != nil {
		lg.Fatal("Failed to create token service", "error", err)
	}

	manager := sse.NewManager(lg.Logger)
	go manager.Start(ctx)

	v := validation.New()
	identity := service.NewIdentityService(st, tokens, v, lg.Logger)
	enricher := dto.NewEnricher(identity)
	notifications := service.NewNotificationService(st, manager, bus.Noop{}, lg.Logger)
	posts := service.NewPostService(st, identity, enricher, manager, v, cfg.Feed, lg.Logger)
	comments := service.NewCommentService(st, identity, enricher, notifications, manager, bus.Noop{}, v, lg.Logger)

	created := 0
	for n := range *postCount {
		owner := seedUsers[n%len(seedUsers)]
		category := seedCategories[rand.IntN(len(seedCategories))]
		title := fmt.Sprintf(seedTitles[rand.IntN(len(seedTitles))], category)

		post, err := posts.CreatePost(ctx, &owner, service.CreatePostInput{
			Title:    title,
			Category: category,
			Content:  fmt.Sprintf("Sharing this with the %s group. Any thoughts welcome.", category),
		})
		if err != nil {
			lg.WithError(err).Warn("Failed to create post", "index", n)
			continue
		}
		created++

		for range rand.IntN(*commentCount + 1) {
			author := seedUsers[rand.IntN(len(seedUsers))]
			reply := service.CommentInput{Text: seedReplies[rand.IntN(len(seedReplies))]}
			if _, err := comments.AddComment(ctx, post.ID, &author, reply); err != nil {
				lg.WithError(err).Warn("Failed to add comment", "post_id", post.ID)
			}
		}
	}

	fmt.Printf("Created %d posts\n\n", created)
	fmt.Println("Bearer tokens:")
	for _, u := range seedUsers {
		token, err := tokens.GenerateAccessToken(u)
		if err != nil {
			lg.WithField("user_id", u.ID).Fatal("Failed to issue token", "error", err)
		}
		fmt.Printf("  %-12s %s\n", u.DisplayName, token)
	}
}
