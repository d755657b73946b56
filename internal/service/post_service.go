package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

const (
	maxTitleLen   = 255
	maxContentLen = 50000
)

type PostService struct {
	posts  repository.PostRepository
	themes repository.ThemeRepository
	policy *AccessPolicy
}

type CreatePostInput struct {
	UserID     uint
	Title      string
	Content    string
	CoverImage string
	ThemeID    uint
	IsPublic   bool
}

type SharePostInput struct {
	UserID   uint
	PostID   uint
	Caption  string
	IsPublic bool
}

// UpdatePostInput carries optional edits; nil fields are left unchanged.
type UpdatePostInput struct {
	UserID     uint
	PostID     uint
	Title      *string
	Content    *string
	CoverImage *string
	ThemeID    *uint
	IsPublic   *bool
}

// LikeResult is the post's like state after a toggle.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

func NewPostService(posts repository.PostRepository, themes repository.ThemeRepository, policy *AccessPolicy) *PostService {
	return &PostService{posts: posts, themes: themes, policy: policy}
}

// ListThemes returns every theme a post can be filed under, by name.
func (s *PostService) ListThemes(ctx context.Context) ([]models.Theme, error) {
	return s.themes.List(ctx)
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if err := validatePostText(title, in.Content); err != nil {
		return nil, err
	}
	if _, err := s.themes.GetByID(ctx, in.ThemeID); err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewValidationError("Theme does not exist")
		}
		return nil, err
	}

	post := &models.Post{
		Title:      title,
		Content:    in.Content,
		CoverImage: strings.TrimSpace(in.CoverImage),
		ThemeID:    in.ThemeID,
		IsPublic:   in.IsPublic,
		UserID:     in.UserID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID, in.UserID)
}

// SharePost creates a share of a visible post. Sharing a share points the new
// post at that share's origin, so share chains never grow past one level.
func (s *PostService) SharePost(ctx context.Context, in SharePostInput) (*models.Post, error) {
	target, err := s.visiblePost(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}
	if target.IsShare() {
		target, err = s.visiblePost(ctx, in.UserID, *target.SharedPostID)
		if err != nil {
			return nil, err
		}
	}
	if len(in.Caption) > maxContentLen {
		return nil, models.NewValidationError("Caption too long (max 50000 characters)")
	}

	originID := target.ID
	share := &models.Post{
		Title:        target.Title,
		Content:      in.Caption,
		ThemeID:      target.ThemeID,
		IsPublic:     in.IsPublic,
		UserID:       in.UserID,
		SharedPostID: &originID,
	}
	if err := s.posts.Create(ctx, share); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, share.ID, in.UserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.ownedPost(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.CoverImage != nil {
		post.CoverImage = strings.TrimSpace(*in.CoverImage)
	}
	if in.IsPublic != nil {
		post.IsPublic = *in.IsPublic
	}
	if in.ThemeID != nil && *in.ThemeID != post.ThemeID {
		if _, err := s.themes.GetByID(ctx, *in.ThemeID); err != nil {
			if models.ErrorCode(err) == models.CodeNotFound {
				return nil, models.NewValidationError("Theme does not exist")
			}
			return nil, err
		}
		post.ThemeID = *in.ThemeID
	}

	if post.IsShare() {
		if len(post.Content) > maxContentLen {
			return nil, models.NewValidationError("Caption too long (max 50000 characters)")
		}
	} else if err := validatePostText(post.Title, post.Content); err != nil {
		return nil, err
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return err
	}
	return s.posts.Delete(ctx, postID)
}

// ToggleLike likes a visible post, or removes the viewer's like if present.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	if _, err := s.visiblePost(ctx, userID, postID); err != nil {
		return nil, err
	}

	liked, err := s.posts.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if liked {
		err = s.posts.Unlike(ctx, userID, postID)
	} else {
		err = s.posts.Like(ctx, userID, postID)
	}
	if err != nil {
		return nil, err
	}

	count, err := s.posts.CountLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: !liked, LikesCount: count}, nil
}

func (s *PostService) visiblePost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(ctx, viewerID, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ownedPost returns not-found for posts the user cannot see and forbidden for
// visible posts owned by someone else.
func (s *PostService) ownedPost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.visiblePost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("You can only modify your own posts")
	}
	return post, nil
}

func validatePostText(title, content string) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 255 characters)")
	}
	if err := validation.NoEmoji("title", title); err != nil {
		return models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}
