package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/search"
)

type UserService struct {
	users       repository.UserRepository
	follows     repository.FollowRepository
	searchLimit int
}

// Profile is a user with follow counts and the viewer's relation to them.
type Profile struct {
	User           *models.User `json:"user"`
	FollowersCount int64        `json:"followers_count"`
	FollowingCount int64        `json:"following_count"`
	IsFollowing    bool         `json:"is_following"`
	FollowsYou     bool         `json:"follows_you"`
	IsMutual       bool         `json:"is_mutual"`
}

func NewUserService(users repository.UserRepository, follows repository.FollowRepository, searchLimit int) *UserService {
	return &UserService{users: users, follows: follows, searchLimit: searchLimit}
}

// SearchUsers returns an empty result for a blank query without touching the database.
func (s *UserService) SearchUsers(ctx context.Context, query string, page int) ([]models.UserSummary, error) {
	if search.Normalize(query) == "" {
		return []models.UserSummary{}, nil
	}
	page = normalizePage(page)
	users, err := s.users.Search(ctx, query, s.searchLimit, (page-1)*s.searchLimit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	return users, nil
}

func (s *UserService) GetProfile(ctx context.Context, viewerID, userID uint) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user}
	if profile.FollowersCount, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = s.follows.CountFollowing(ctx, userID); err != nil {
		return nil, err
	}

	if viewerID != 0 && viewerID != userID {
		if profile.IsFollowing, err = s.follows.IsFollowing(ctx, viewerID, userID); err != nil {
			return nil, err
		}
		if profile.FollowsYou, err = s.follows.IsFollowing(ctx, userID, viewerID); err != nil {
			return nil, err
		}
		profile.IsMutual = profile.IsFollowing && profile.FollowsYou
	}
	return profile, nil
}
