package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	tokenSecretLength = 40
	tokenAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	defaultTokenName  = "auth"
)

// TokenService issues, resolves and revokes opaque bearer tokens of the form
// "<id>|<secret>". Only the SHA-256 of the secret is persisted.
type TokenService struct {
	tokens   repository.TokenRepository
	users    repository.UserRepository
	rdb      redis.Cmdable
	cacheTTL time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service. rdb may be nil, in which case every
// resolve goes to the database.
func NewTokenService(tokens repository.TokenRepository, users repository.UserRepository, rdb redis.Cmdable, cacheTTL time.Duration) *TokenService {
	return &TokenService{
		tokens:   tokens,
		users:    users,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Issue creates a new token for userID and returns its plain-text form. The
// plain text is never stored and cannot be recovered later.
func (s *TokenService) Issue(ctx context.Context, userID uint) (string, error) {
	secret, err := randomSecret(tokenSecretLength)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	row := &models.AccessToken{
		UserID:    userID,
		Name:      defaultTokenName,
		TokenHash: hashSecret(secret),
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return "", err
	}

	observability.SessionTokens.WithLabelValues("issue").Inc()
	return fmt.Sprintf("%d|%s", row.ID, secret), nil
}

// Revoke deletes the token. Unknown, malformed or already revoked tokens report
// false without an error.
func (s *TokenService) Revoke(ctx context.Context, token string) (bool, error) {
	id, hash, ok := parseToken(token)
	if !ok {
		observability.SessionTokens.WithLabelValues("revoke_miss").Inc()
		return false, nil
	}

	deleted, err := s.tokens.Delete(ctx, id, hash)
	if err != nil {
		return false, err
	}
	if !deleted {
		observability.SessionTokens.WithLabelValues("revoke_miss").Inc()
		return false, nil
	}
	// A tombstone rather than a delete, so a Resolve already past the cache
	// lookup cannot write the binding back.
	cache.Tombstone(ctx, s.rdb, tokenCacheKey(id, hash), s.cacheTTL)
	observability.SessionTokens.WithLabelValues("revoke").Inc()
	return true, nil
}

// Resolve returns the active user bound to token, or nil when the token is
// unknown, revoked, or belongs to a removed user.
func (s *TokenService) Resolve(ctx context.Context, token string) (*models.User, error) {
	id, hash, ok := parseToken(token)
	if !ok {
		return nil, nil
	}

	userID, err := cache.IDAside(ctx, s.rdb, tokenCacheKey(id, hash), s.cacheTTL, func() (uint, error) {
		row, err := s.tokens.FindByHash(ctx, hash)
		if err != nil || row == nil || row.ID != id {
			return 0, err
		}
		if err := s.tokens.Touch(ctx, row.ID, s.now()); err != nil {
			serviceLog.LogServiceWarning(ctx, "tokens", "Resolve", fmt.Errorf("record use of token %d: %w", row.ID, err))
		}
		return row.UserID, nil
	})
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		observability.SessionTokens.WithLabelValues("resolve_miss").Inc()
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func parseToken(token string) (uint, string, bool) {
	idPart, secret, found := strings.Cut(strings.TrimSpace(token), "|")
	if !found || len(secret) != tokenSecretLength {
		return 0, "", false
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, "", false
	}
	return uint(id), hashSecret(secret), true
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func tokenCacheKey(id uint, hash string) string {
	return cache.TokenKey(fmt.Sprintf("%d:%s", id, hash))
}

func randomSecret(n int) (string, error) {
	n64 := big.NewInt(int64(len(tokenAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, n64)
		if err != nil {
			return "", err
		}
		b[i] = tokenAlphabet[idx.Int64()]
	}
	return string(b), nil
}
