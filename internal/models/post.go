package models

import (
	"time"

	"agora/internal/search"

	"gorm.io/gorm"
)

// Post is either an original post or a share of exactly one origin post.
type Post struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"not null" json:"title"`
	Content    string `gorm:"type:text;not null" json:"content"`
	PlainText  string `gorm:"type:text;not null;default:''" json:"-"`
	CoverImage string `json:"cover_image,omitempty"`
	IsPublic   bool   `gorm:"not null;index" json:"is_public"`
	UserID     uint   `gorm:"not null;index" json:"user_id"`
	User       User   `gorm:"foreignKey:UserID" json:"user"`
	ThemeID    uint   `gorm:"not null;index" json:"theme_id"`
	Theme      Theme  `gorm:"foreignKey:ThemeID" json:"theme"`
	// SharedPostID is set once when the post is created as a share.
	SharedPostID *uint `gorm:"index" json:"shared_post_id,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->;-:migration" json:"liked"`
	Origin    *OriginPost    `gorm:"-" json:"origin,omitempty"`
	// Likers are the active users currently liking the post.
	Likers []UserSummary `gorm:"-" json:"likers"`
	// Shares are the viewer-visible posts sharing this one.
	Shares    []SharePreview `gorm:"-" json:"shares"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsShare reports whether the post points at an origin post.
func (p *Post) IsShare() bool {
	return p.SharedPostID != nil
}

// BeforeSave keeps the plain-text projection in step with the rich content.
func (p *Post) BeforeSave(_ *gorm.DB) error {
	p.PlainText = search.PlainText(p.Content)
	return nil
}

// OriginPost is the compact projection of a shared post's origin. When the
// origin has been removed only ID is set and Available is false.
type OriginPost struct {
	ID          uint      `json:"id"`
	Available   bool      `json:"available"`
	Title       string    `json:"title,omitempty"`
	Content     string    `json:"content,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"`
	ThemeName   string    `json:"theme_name,omitempty"`
	OwnerHandle string    `json:"owner_handle,omitempty"`
	OwnerAvatar string    `json:"owner_avatar,omitempty"`
	OwnerID     uint      `json:"owner_id,omitempty"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// UnavailableOrigin is the placeholder rendered for a removed or hidden origin.
func UnavailableOrigin(id uint) *OriginPost {
	return &OriginPost{ID: id}
}

// SharePreview is the compact projection of a post that shares another.
type SharePreview struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	ThemeName   string    `json:"theme_name"`
	OwnerID     uint      `json:"owner_id"`
	OwnerHandle string    `json:"owner_handle"`
	OwnerAvatar string    `json:"owner_avatar"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
}
