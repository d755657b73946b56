package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/search"

	"go.opentelemetry.io/otel/attribute"
)

// FeedMode selects which posts a feed lists.
type FeedMode string

const (
	// FeedDiscover lists public posts, the viewer's own posts and mutual followers' posts.
	FeedDiscover FeedMode = "discover"
	// FeedFollowing lists visible posts by users the viewer follows.
	FeedFollowing FeedMode = "following"
	// FeedSearch lists visible posts matching a query.
	FeedSearch FeedMode = "search"
)

type FeedRequest struct {
	ViewerID uint
	Mode     FeedMode
	Query    string
	Page     int
}

// FeedPage is one page of annotated posts. HasMore comes from fetching one row
// past the page, so no total is computed.
type FeedPage struct {
	Posts    []*models.Post `json:"posts"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasMore  bool           `json:"has_more"`
}

// FeedService assembles paginated, annotated post lists for a viewer.
type FeedService struct {
	posts    repository.PostRepository
	policy   *AccessPolicy
	pageSize int
}

func NewFeedService(posts repository.PostRepository, policy *AccessPolicy, pageSize int) *FeedService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &FeedService{posts: posts, policy: policy, pageSize: pageSize}
}

// ListFeed returns the requested page, newest first.
func (s *FeedService) ListFeed(ctx context.Context, req FeedRequest) (*FeedPage, error) {
	mode := req.Mode
	if mode == "" {
		mode = FeedDiscover
	}
	defer observability.ObserveFeed(string(mode))()
	span, ctx := observability.NewSpan(ctx, "feed.list")
	defer span.End()
	span.AddAttributes(
		attribute.String("feed.mode", string(mode)),
		attribute.Int("feed.page", req.Page),
		attribute.Int64("feed.viewer_id", int64(req.ViewerID)),
	)

	page := normalizePage(req.Page)
	q := repository.FeedQuery{ViewerID: req.ViewerID}

	switch mode {
	case FeedDiscover:
	case FeedFollowing:
		if req.ViewerID == 0 {
			return nil, models.NewUnauthorizedError("Sign in to see posts from people you follow")
		}
		q.FollowingOnly = true
	case FeedSearch:
		if search.Normalize(req.Query) == "" {
			return s.emptyPage(page), nil
		}
		query := req.Query
		q.Search = &query
	default:
		return nil, models.NewValidationError("Unknown feed mode")
	}

	result, err := s.list(ctx, q, page)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int("feed.results", len(result.Posts)))
	return result, nil
}

// ListUserPosts is a profile timeline: one owner's posts through the same visibility filter.
func (s *FeedService) ListUserPosts(ctx context.Context, viewerID, ownerID uint, page int) (*FeedPage, error) {
	return s.list(ctx, repository.FeedQuery{ViewerID: viewerID, OwnerID: ownerID}, normalizePage(page))
}

// GetPost returns a single annotated post, or not-found when the viewer cannot see it.
func (s *FeedService) GetPost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(ctx, viewerID, post); err != nil {
		return nil, err
	}
	if err := s.annotate(ctx, viewerID, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *FeedService) list(ctx context.Context, q repository.FeedQuery, page int) (*FeedPage, error) {
	q.Limit = s.pageSize + 1
	q.Offset = (page - 1) * s.pageSize

	posts, err := s.posts.ListFeed(ctx, q)
	if err != nil {
		return nil, err
	}

	hasMore := len(posts) > s.pageSize
	if hasMore {
		posts = posts[:s.pageSize]
	}
	if err := s.annotate(ctx, q.ViewerID, posts); err != nil {
		return nil, err
	}

	if posts == nil {
		posts = []*models.Post{}
	}
	return &FeedPage{Posts: posts, Page: page, PageSize: s.pageSize, HasMore: hasMore}, nil
}

func (s *FeedService) annotate(ctx context.Context, viewerID uint, posts []*models.Post) error {
	if err := s.attachOrigins(ctx, viewerID, posts); err != nil {
		return err
	}
	return s.attachEngagement(ctx, viewerID, posts)
}

// attachEngagement fills likers and share previews for the whole page in two
// queries. Shares pass the same visibility filter as the feed.
func (s *FeedService) attachEngagement(ctx context.Context, viewerID uint, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	likers, err := s.posts.ListLikers(ctx, ids)
	if err != nil {
		return err
	}
	shares, err := s.posts.ListShares(ctx, viewerID, ids)
	if err != nil {
		return err
	}

	previews := make(map[uint][]models.SharePreview, len(ids))
	for _, sh := range shares {
		origin := *sh.SharedPostID
		previews[origin] = append(previews[origin], models.SharePreview{
			ID:          sh.ID,
			Title:       sh.Title,
			ThemeName:   sh.Theme.Name,
			OwnerID:     sh.User.ID,
			OwnerHandle: sh.User.Handle,
			OwnerAvatar: sh.User.Avatar,
			IsPublic:    sh.IsPublic,
			CreatedAt:   sh.CreatedAt,
		})
	}

	for _, p := range posts {
		p.Likers = likers[p.ID]
		if p.Likers == nil {
			p.Likers = []models.UserSummary{}
		}
		p.Shares = previews[p.ID]
		if p.Shares == nil {
			p.Shares = []models.SharePreview{}
		}
	}
	return nil
}

// attachOrigins resolves each share's origin exactly one level deep. Origins
// that are removed, owned by a removed user, or hidden from the viewer render
// as unavailable instead of failing the page.
func (s *FeedService) attachOrigins(ctx context.Context, viewerID uint, posts []*models.Post) error {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, p := range posts {
		if !p.IsShare() {
			continue
		}
		if _, ok := seen[*p.SharedPostID]; !ok {
			seen[*p.SharedPostID] = struct{}{}
			ids = append(ids, *p.SharedPostID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	origins, err := s.posts.GetOrigins(ctx, ids)
	if err != nil {
		return err
	}
	visibleIDs, err := s.posts.VisibleIDs(ctx, viewerID, ids)
	if err != nil {
		return err
	}

	visible := make(map[uint]struct{}, len(visibleIDs))
	for _, id := range visibleIDs {
		visible[id] = struct{}{}
	}
	byID := make(map[uint]*models.Post, len(origins))
	for _, o := range origins {
		byID[o.ID] = o
	}

	for _, p := range posts {
		if !p.IsShare() {
			continue
		}
		o, ok := byID[*p.SharedPostID]
		_, isVisible := visible[*p.SharedPostID]
		if !ok || !isVisible || o.DeletedAt.Valid || o.User.ID == 0 || o.User.DeletedAt.Valid {
			p.Origin = models.UnavailableOrigin(*p.SharedPostID)
			continue
		}
		p.Origin = projectOrigin(o)
	}
	return nil
}

func projectOrigin(o *models.Post) *models.OriginPost {
	return &models.OriginPost{
		ID:          o.ID,
		Available:   true,
		Title:       o.Title,
		Content:     o.Content,
		CoverImage:  o.CoverImage,
		ThemeName:   o.Theme.Name,
		OwnerHandle: o.User.Handle,
		OwnerAvatar: o.User.Avatar,
		OwnerID:     o.User.ID,
		IsPublic:    o.IsPublic,
		CreatedAt:   o.CreatedAt,
	}
}

func (s *FeedService) emptyPage(page int) *FeedPage {
	return &FeedPage{Posts: []*models.Post{}, Page: page, PageSize: s.pageSize}
}

// maxPage bounds page numbers so offset arithmetic cannot overflow.
const maxPage = 100_000

func normalizePage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > maxPage:
		return maxPage
	}
	return page
}
