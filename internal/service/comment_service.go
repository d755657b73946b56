package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/repository"
)

const maxCommentLen = 10000

// ThrottledError is returned when the engagement limiter rejects a comment.
type ThrottledError struct {
	AppErr     *models.AppError
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string { return e.AppErr.Error() }

func (e *ThrottledError) Unwrap() error { return e.AppErr }

type CommentService struct {
	comments  repository.CommentRepository
	posts     repository.PostRepository
	policy    *AccessPolicy
	limiter   *EngagementLimiter
	pageSize  int
	latestMax int
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	policy *AccessPolicy,
	limiter *EngagementLimiter,
	pageSize, latestMax int,
) *CommentService {
	return &CommentService{
		comments:  comments,
		posts:     posts,
		policy:    policy,
		limiter:   limiter,
		pageSize:  pageSize,
		latestMax: latestMax,
	}
}

// CreateComment validates the comment, checks the post is visible, then
// consumes one unit of the author's engagement budget before writing.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if err := validateComment(content); err != nil {
		return nil, err
	}
	if err := s.authorizePost(ctx, in.UserID, in.PostID); err != nil {
		return nil, err
	}

	decision, err := s.limiter.TryConsume(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &ThrottledError{
			AppErr: models.NewRateLimitedError(
				fmt.Sprintf("Too many comments, try again in %d seconds", int(decision.RetryAfter.Seconds()))),
			RetryAfter: decision.RetryAfter,
		}
	}

	comment := &models.Comment{
		Content: content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, viewerID, postID uint, page int) ([]*models.Comment, error) {
	if err := s.authorizePost(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	page = normalizePage(page)
	comments, err := s.comments.ListByPost(ctx, postID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	return nonNil(comments), nil
}

// ListLatest returns comments posted after since, for incremental refresh.
func (s *CommentService) ListLatest(ctx context.Context, viewerID, postID uint, since time.Time) ([]*models.Comment, error) {
	if err := s.authorizePost(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListLatest(ctx, postID, since, s.latestMax)
	if err != nil {
		return nil, err
	}
	return nonNil(comments), nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}

	content := strings.TrimSpace(in.Content)
	if err := validateComment(content); err != nil {
		return nil, err
	}
	comment.Content = content
	comment.IsEdited = true

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *CommentService) authorizePost(ctx context.Context, viewerID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		return err
	}
	return s.policy.Authorize(ctx, viewerID, post)
}

func nonNil(comments []*models.Comment) []*models.Comment {
	if comments == nil {
		return []*models.Comment{}
	}
	return comments
}

func validateComment(content string) error {
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return nil
}
