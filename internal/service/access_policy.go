// Package service holds the application's business logic.
package service

import (
	"context"

	"agora/internal/models"
)

// MutualFollowChecker is the part of the follow graph the access policy reads.
type MutualFollowChecker interface {
	IsMutualFollower(ctx context.Context, viewerID, ownerID uint) (bool, error)
}

// AccessPolicy decides whether a viewer may see a post. The bulk form of the same
// rule is repository.VisibleTo; both must agree on every input.
type AccessPolicy struct {
	follows MutualFollowChecker
}

func NewAccessPolicy(follows MutualFollowChecker) *AccessPolicy {
	return &AccessPolicy{follows: follows}
}

// CanView applies, in order: public posts are visible, owners see their own
// posts, otherwise the viewer must be a mutual follower of the owner.
// Viewer 0 is anonymous.
func (p *AccessPolicy) CanView(ctx context.Context, viewerID uint, post *models.Post) (bool, error) {
	if post.IsPublic {
		return true, nil
	}
	if viewerID == 0 {
		return false, nil
	}
	if post.UserID == viewerID {
		return true, nil
	}
	return p.follows.IsMutualFollower(ctx, viewerID, post.UserID)
}

// Authorize returns a not-found error for posts the viewer cannot see, so a
// private post is indistinguishable from a missing one.
func (p *AccessPolicy) Authorize(ctx context.Context, viewerID uint, post *models.Post) error {
	ok, err := p.CanView(ctx, viewerID, post)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}
