package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/blogup/blogup/internal/client"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// ============================================================================
// SEED
// ============================================================================

var seedUsers = []struct {
	email string
	name  string
}{
	{"ada@example.com", "Ada"},
	{"grace@example.com", "Grace"},
	{"linus@example.com", "Linus"},
	{"barbara@example.com", "Barbara"},
	{"ken@example.com", "Ken"},
}

var seedPosts = []struct {
	title   string
	content string
}{
	{"Hello, Blogup", "First post on the block. Everything starts somewhere."},
	{"Why I Write Things Down", "Notes are cheap, memory is not."},
	{"A Week With SQLite in Production", "It turns out a single file goes a long way."},
	{"Reading Code Out Loud", "Pair reviews got better once we started narrating diffs."},
	{"On Small Pull Requests", "Two hundred lines is a review. Two thousand is a rubber stamp."},
	{"Postgres Connection Pools, Briefly", "Size the pool to the database, not to the request rate."},
	{"Naming Is the Hard Part", "A good name saves a comment. A bad one needs three."},
	{"Shipping on Fridays", "Only if rollback is one command."},
}

const seedPassword = "password123"

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create demo users and posts through the API",
		Action: func(c *cli.Context) error {
			baseURL := c.String("url")
			log.Info().Str("url", baseURL).Msg("seeding")

			var clients []*client.Client
			for _, u := range seedUsers {
				api := client.New(baseURL)
				if _, err := api.Signup(u.email, seedPassword, u.name); err != nil {
					// Rerunning the seed signs the existing accounts back in.
					if _, _, err := api.Signin(u.email, seedPassword); err != nil {
						return fmt.Errorf("signup %s: %w", u.email, err)
					}
				}
				log.Info().Str("email", u.email).Msg("✓ user ready")
				clients = append(clients, api)
			}

			var postIDs []string
			for _, p := range seedPosts {
				idx := rand.Intn(len(clients))
				id, err := clients[idx].CreatePost(p.title, p.content)
				if err != nil {
					log.Warn().Err(err).Str("title", p.title).Msg("✗ failed to create post")
					continue
				}
				postIDs = append(postIDs, id)
				log.Info().Str("post_id", id).Str("author", seedUsers[idx].email).Msg("✓ created post")

				// Spread out created_at so list order is stable.
				time.Sleep(10 * time.Millisecond)
			}

			fmt.Println("\n=== Seed Complete ===")
			fmt.Printf("Users:  %d\n", len(clients))
			fmt.Printf("Posts:  %d\n", len(postIDs))
			fmt.Printf("Password for every user: %s\n", seedPassword)
			return nil
		},
	}
}
