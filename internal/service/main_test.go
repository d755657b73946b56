package service

import (
	"testing"
	"time"

	"agora/internal/cache"
	"agora/internal/repository"
	"agora/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPageSize = 3

type testEnv struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	follows  repository.FollowRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	policy   *AccessPolicy
	limiter  *EngagementLimiter
	tokens   *TokenService
	feed     *FeedService
	post     *PostService
	comments *CommentService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)

	follows := repository.NewFollowRepository(db)
	posts := repository.NewPostRepository(db)
	users := repository.NewUserRepository(db)
	policy := NewAccessPolicy(follows)
	limiter := NewEngagementLimiter(cache.NewRedisCounterStore(rdb), 20, 5*time.Minute)
	tokens := NewTokenService(repository.NewTokenRepository(db), users, rdb, time.Minute)
	auth := NewAuthService(users, tokens)
	auth.cost = bcrypt.MinCost

	return &testEnv{
		db:       db,
		mr:       mr,
		follows:  follows,
		posts:    posts,
		users:    users,
		policy:   policy,
		limiter:  limiter,
		tokens:   tokens,
		feed:     NewFeedService(posts, policy, testPageSize),
		post:     NewPostService(posts, repository.NewThemeRepository(db), policy),
		comments: NewCommentService(repository.NewCommentRepository(db), posts, policy, limiter, 10, 100),
		auth:     auth,
	}
}
