package models

import "time"

// User represents a contributor identity.
// Email / PhoneNumber / PasswordHash are pointers so absent values stay NULL
// and the unique indexes only bite on real values.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	Email        *string   `gorm:"size:128;uniqueIndex" json:"email,omitempty"`
	PhoneNumber  *string   `gorm:"size:32;uniqueIndex" json:"phoneNumber,omitempty"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	IsAdmin      bool      `gorm:"default:false" json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}
