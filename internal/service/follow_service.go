package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
)

type FollowService struct {
	follows         repository.FollowRepository
	users           repository.UserRepository
	suggestionLimit int
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository, suggestionLimit int) *FollowService {
	return &FollowService{follows: follows, users: users, suggestionLimit: suggestionLimit}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("Cannot follow yourself")
	}
	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return err
	}
	return s.follows.Follow(ctx, followerID, followeeID)
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return s.follows.Unfollow(ctx, followerID, followeeID)
}

func (s *FollowService) IsMutual(ctx context.Context, a, b uint) (bool, error) {
	return s.follows.IsMutualFollower(ctx, a, b)
}

// FollowerIDs lists who follows userID, capped at the suggestion limit when limit <= 0.
func (s *FollowService) FollowerIDs(ctx context.Context, userID uint, limit int) ([]uint, error) {
	if limit <= 0 {
		limit = s.suggestionLimit
	}
	ids, err := s.follows.GetFollowerIDs(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

// Suggestions lists active users the user does not follow yet.
func (s *FollowService) Suggestions(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	users, err := s.users.SuggestFollows(ctx, userID, s.suggestionLimit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	return users, nil
}
