package cache

import (
	"fmt"
	"time"
)

const (
	CommentCountKeyPrefix = "user_comment_count_%d"
	TokenKeyPrefix        = "token:%s"
)

const (
	CommentWindow = 5 * time.Minute
	TokenTTL      = time.Minute
)

// CommentCountKey is the engagement counter key for a user.
func CommentCountKey(userID uint) string {
	return fmt.Sprintf(CommentCountKeyPrefix, userID)
}

// TokenKey is the cache key mapping a token hash to its user id.
func TokenKey(hash string) string {
	return fmt.Sprintf(TokenKeyPrefix, hash)
}
