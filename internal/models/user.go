// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered student account.
//
// The account's reviews are a has-many association resolved at query time;
// there is no denormalized review-ID list to keep in sync with the reviews
// table.
type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"not null" json:"name"`
	Email      string `gorm:"unique;not null" json:"email"`
	Phone      string `gorm:"not null" json:"phone"`
	Year       string `gorm:"not null" json:"year"`
	Hall       string `gorm:"not null" json:"hall"`
	Department string `gorm:"not null" json:"department"`
	Password   string `gorm:"not null" json:"-"`

	// Single-use password reset state. ResetTokenID holds the jti of the
	// last issued reset token; both are cleared once the reset succeeds.
	ResetTokenID     string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Reviews []Review `gorm:"foreignKey:UserID" json:"reviews,omitempty"`
}
