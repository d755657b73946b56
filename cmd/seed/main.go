// Command main runs the database seeder for Agora.
package main

import (
	"context"
	"flag"
	"log"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/seed"
)

func main() {
	preset := flag.String("preset", "", "Built-in preset name (small, demo) or path to a YAML preset file")
	users := flag.Int("users", 0, "Override the preset's user count")
	postsPerUser := flag.Int("posts-per-user", 0, "Override the preset's posts per user")
	clean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	p, err := seed.LoadPreset(*preset)
	if err != nil {
		log.Fatalf("Failed to load preset: %v", err)
	}
	if *users > 0 {
		p.Users = *users
	}
	if *postsPerUser > 0 {
		p.PostsPerUser = *postsPerUser
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.NewSeeder(db, seed.Options{
		Preset: p,
		Clean:  *clean,
		Seed:   *randSeed,
	}).Run(context.Background())
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d users, %d posts, %d shares, %d follows, %d likes, %d comments.",
		sum.Users, sum.Posts, sum.Shares, sum.Follows, sum.Likes, sum.Comments)
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
