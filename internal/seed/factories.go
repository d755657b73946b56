// Package seed creates demo data for development databases and tests.
package seed

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every seeded account.
const DefaultPassword = "Agora-Seed-2024!"

// FactoryOptions controls how a Factory generates rows.
type FactoryOptions struct {
	// Seed makes generated content reproducible. Zero picks a random seed.
	Seed int64
	// MaxDays bounds how far back created_at timestamps are spread.
	MaxDays int
	// PasswordHash is stored on every user. Hashing once per run keeps large
	// seeds fast.
	PasswordHash string
	// Now anchors created_at spreading; defaults to time.Now.
	Now func() time.Time
}

// Factory builds domain rows with realistic fake content and persists them.
type Factory struct {
	db    *gorm.DB
	opts  FactoryOptions
	faker *gofakeit.Faker
	seq   int
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts FactoryOptions) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	faker := gofakeit.New(opts.Seed)
	return &Factory{db: db, opts: opts, faker: faker}
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float64) bool {
	return f.faker.Float64() < p
}

// Pick returns a random index in [0, n).
func (f *Factory) Pick(n int) int {
	return f.faker.IntRange(0, n-1)
}

// createdAt spreads timestamps over the last MaxDays.
func (f *Factory) createdAt() time.Time {
	back := time.Duration(f.faker.IntRange(0, f.opts.MaxDays*24*60)) * time.Minute
	return f.opts.Now().Add(-back).UTC()
}

// BuildUser constructs an unsaved user. Handles are unique per Factory.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	f.seq++
	first, last := f.faker.FirstName(), f.faker.LastName()
	handle := fmt.Sprintf("%s_%d", handleStem(first), f.seq)
	user := &models.User{
		Handle:    handle,
		FirstName: first,
		LastName:  last,
		Email:     handle + "@example.com",
		Password:  f.opts.PasswordHash,
		Avatar:    "https://i.pravatar.cc/150?u=" + uuid.NewString(),
		City:      f.faker.City(),
		Country:   f.faker.Country(),
		CreatedAt: f.createdAt(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Handle, err)
	}
	return user, nil
}

// BuildPost constructs an unsaved post authored by user under theme.
func (f *Factory) BuildPost(user *models.User, theme *models.Theme, overrides ...func(*models.Post)) *models.Post {
	title := strings.TrimSuffix(f.faker.Sentence(f.faker.IntRange(3, 7)), ".")
	paragraphs := make([]string, f.faker.IntRange(1, 3))
	for i := range paragraphs {
		paragraphs[i] = "<p>" + f.faker.Paragraph(1, f.faker.IntRange(2, 4), 10, " ") + "</p>"
	}
	post := &models.Post{
		Title:      title,
		Content:    strings.Join(paragraphs, ""),
		CoverImage: fmt.Sprintf("https://picsum.photos/seed/%s/800/450", uuid.NewString()),
		IsPublic:   true,
		UserID:     user.ID,
		ThemeID:    theme.ID,
		CreatedAt:  f.createdAt(),
	}
	// Posts never predate their author.
	if post.CreatedAt.Before(user.CreatedAt) {
		post.CreatedAt = user.CreatedAt
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists a post.
func (f *Factory) CreatePost(user *models.User, theme *models.Theme, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, theme, overrides...)
	if err := f.CreatePostsBatch([]*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists posts in one statement per batch.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if err := f.db.Omit("User", "Theme").CreateInBatches(posts, 200).Error; err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	return nil
}

// CreateShare persists a share of origin by user. origin must not itself be a share.
func (f *Factory) CreateShare(user *models.User, origin *models.Post, overrides ...func(*models.Post)) (*models.Post, error) {
	originID := origin.ID
	share := &models.Post{
		Title:        origin.Title,
		Content:      "<p>" + f.faker.Sentence(8) + "</p>",
		IsPublic:     true,
		UserID:       user.ID,
		ThemeID:      origin.ThemeID,
		SharedPostID: &originID,
		CreatedAt:    origin.CreatedAt.Add(time.Duration(f.faker.IntRange(1, 72*60)) * time.Minute),
	}
	if now := f.opts.Now(); share.CreatedAt.After(now) {
		share.CreatedAt = now.UTC()
	}
	for _, override := range overrides {
		override(share)
	}
	if err := f.CreatePostsBatch([]*models.Post{share}); err != nil {
		return nil, err
	}
	return share, nil
}

// CreateComment persists a comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:   f.faker.Sentence(f.faker.IntRange(4, 14)),
		UserID:    user.ID,
		PostID:    post.ID,
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.IntRange(1, 48*60)) * time.Minute),
	}
	if now := f.opts.Now(); comment.CreatedAt.After(now) {
		comment.CreatedAt = now.UTC()
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.db.Omit("User").Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// CreateLike persists a like from user on post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if err := f.db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error; err != nil {
		return fmt.Errorf("create like: %w", err)
	}
	return nil
}

// handleStem lowercases name and keeps at most 12 ASCII letters or digits.
func handleStem(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
		if b.Len() == 12 {
			break
		}
	}
	if b.Len() < 3 {
		return "user"
	}
	return b.String()
}
