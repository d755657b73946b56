// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Users are soft-deleted so that posts,
// follows and likes keep their references.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Handle     string         `gorm:"uniqueIndex;not null" json:"handle"`
	FirstName  string         `gorm:"not null" json:"first_name"`
	LastName   string         `gorm:"not null" json:"last_name"`
	Email      string         `gorm:"uniqueIndex;not null" json:"-"`
	Password   string         `gorm:"not null" json:"-"`
	Avatar     string         `json:"avatar"`
	Birthday   *time.Time     `json:"birthday,omitempty"`
	LotBlockNo string         `json:"lot_block_no,omitempty"`
	Street     string         `json:"street,omitempty"`
	City       string         `json:"city,omitempty"`
	Province   string         `json:"province,omitempty"`
	Country    string         `json:"country,omitempty"`
	ZipCode    string         `json:"zip_code,omitempty"`
	PhoneNo    string         `json:"phone_no,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName joins first and last name with a single space.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserSummary is the compact projection used in search results and suggestions.
type UserSummary struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Handle    string    `json:"handle"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}
