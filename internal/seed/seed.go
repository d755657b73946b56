package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"agora/internal/models"
	"agora/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a Seeder run.
type Options struct {
	Preset Preset
	// Clean removes existing rows before seeding.
	Clean bool
	// Seed makes the run reproducible. Zero picks a random seed.
	Seed int64
	// HashCost overrides the bcrypt cost; zero uses bcrypt.DefaultCost.
	HashCost int
	// Now anchors generated timestamps; defaults to time.Now.
	Now func() time.Time
}

// Summary counts the rows a run created.
type Summary struct {
	Themes   int
	Users    int
	Posts    int
	Shares   int
	Follows  int
	Likes    int
	Comments int
}

// Seeder applies a Preset to a database.
type Seeder struct {
	db      *gorm.DB
	themes  repository.ThemeRepository
	follows repository.FollowRepository
	opts    Options
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		themes:  repository.NewThemeRepository(db),
		follows: repository.NewFollowRepository(db),
		opts:    opts,
	}
}

// Run seeds themes, users, posts, shares, follows, likes and comments.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	p := s.opts.Preset
	if err := p.Validate(); err != nil {
		return sum, err
	}
	log.Printf("🌱 Seeding preset %q: %d users, %d posts each", p.Name, p.Users, p.PostsPerUser)

	if s.opts.Clean {
		if err := ClearAll(ctx, s.db); err != nil {
			return sum, fmt.Errorf("clear data: %w", err)
		}
	}

	cost := s.opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return sum, fmt.Errorf("hash password: %w", err)
	}
	f := NewFactory(s.db.WithContext(ctx), FactoryOptions{
		Seed:         s.opts.Seed,
		MaxDays:      p.MaxDays,
		PasswordHash: string(hash),
		Now:          s.opts.Now,
	})

	themes := make([]*models.Theme, 0, len(p.Themes))
	for _, name := range p.Themes {
		th, err := s.themes.Ensure(ctx, name)
		if err != nil {
			return sum, fmt.Errorf("ensure theme %q: %w", name, err)
		}
		themes = append(themes, th)
	}
	sum.Themes = len(themes)

	users := make([]*models.User, 0, p.Users)
	for i := 0; i < p.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return sum, err
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	if sum.Follows, err = s.seedFollows(ctx, f, users); err != nil {
		return sum, err
	}
	log.Printf("✓ %d follow edges created", sum.Follows)

	posts, err := s.seedPosts(f, users, themes)
	if err != nil {
		return sum, err
	}
	sum.Posts = len(posts)
	log.Printf("✓ %d posts created", sum.Posts)

	if sum.Shares, err = s.seedShares(f, users, posts); err != nil {
		return sum, err
	}
	if sum.Likes, sum.Comments, err = s.seedEngagement(f, users, posts); err != nil {
		return sum, err
	}
	log.Printf("✓ %d shares, %d likes, %d comments created", sum.Shares, sum.Likes, sum.Comments)
	log.Println("🎉 Database seeding completed successfully!")
	return sum, nil
}

// seedFollows draws each directed edge with FollowRatio and answers it with
// MutualRatio so the graph has both one-way and mutual pairs.
func (s *Seeder) seedFollows(ctx context.Context, f *Factory, users []*models.User) (int, error) {
	p := s.opts.Preset
	edges := make(map[[2]uint]bool)
	add := func(a, b *models.User) error {
		key := [2]uint{a.ID, b.ID}
		if edges[key] {
			return nil
		}
		if err := s.follows.Follow(ctx, a.ID, b.ID); err != nil {
			return fmt.Errorf("follow %d -> %d: %w", a.ID, b.ID, err)
		}
		edges[key] = true
		return nil
	}
	for _, a := range users {
		for _, b := range users {
			if a.ID == b.ID || !f.Chance(p.FollowRatio) {
				continue
			}
			if err := add(a, b); err != nil {
				return 0, err
			}
			if f.Chance(p.MutualRatio) {
				if err := add(b, a); err != nil {
					return 0, err
				}
			}
		}
	}
	return len(edges), nil
}

func (s *Seeder) seedPosts(f *Factory, users []*models.User, themes []*models.Theme) ([]*models.Post, error) {
	p := s.opts.Preset
	posts := make([]*models.Post, 0, len(users)*p.PostsPerUser)
	for _, u := range users {
		for i := 0; i < p.PostsPerUser; i++ {
			theme := themes[f.Pick(len(themes))]
			public := !f.Chance(p.PrivateRatio)
			posts = append(posts, f.BuildPost(u, theme, func(post *models.Post) {
				post.IsPublic = public
			}))
		}
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// seedShares lets users share public posts of other authors.
func (s *Seeder) seedShares(f *Factory, users []*models.User, posts []*models.Post) (int, error) {
	p := s.opts.Preset
	public := make([]*models.Post, 0, len(posts))
	for _, post := range posts {
		if post.IsPublic {
			public = append(public, post)
		}
	}
	if len(public) == 0 {
		return 0, nil
	}
	count := 0
	for _, u := range users {
		for i := 0; i < p.PostsPerUser; i++ {
			if !f.Chance(p.ShareRatio) {
				continue
			}
			origin := public[f.Pick(len(public))]
			if origin.UserID == u.ID {
				continue
			}
			if _, err := f.CreateShare(u, origin); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// seedEngagement adds likes and comments on public posts only, so every seeded
// interaction is one the author could have made through the API.
func (s *Seeder) seedEngagement(f *Factory, users []*models.User, posts []*models.Post) (likes, comments int, err error) {
	p := s.opts.Preset
	for _, post := range posts {
		if !post.IsPublic {
			continue
		}
		for _, u := range users {
			if f.Chance(p.LikeRatio) {
				if err := f.CreateLike(u, post); err != nil {
					return likes, comments, err
				}
				likes++
			}
		}
		if len(users) == 0 {
			continue
		}
		for i := 0; i < p.CommentsPerPost; i++ {
			author := users[f.Pick(len(users))]
			if _, err := f.CreateComment(author, post); err != nil {
				return likes, comments, err
			}
			comments++
		}
	}
	return likes, comments, nil
}

// ClearAll hard-deletes every seeded table, children first.
func ClearAll(ctx context.Context, db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	tx := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range []any{
		&models.AccessToken{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Post{},
		&models.User{},
		&models.Theme{},
	} {
		if err := tx.Unscoped().Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
