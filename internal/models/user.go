// Package models contains data structures for the application's domain models.
package models

import "time"

// Default profile images applied at signup when the user supplies none.
const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a Warbler account. Username and email are unique and must
// be non-empty; both are enforced by the database so concurrent duplicate
// signups fail at commit time rather than in an application pre-check.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"unique;not null;check:username <> ''" json:"username"`
	Email          string    `gorm:"unique;not null;check:email <> ''" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	CreatedAt      time.Time `json:"created_at"`

	Messages []Message `gorm:"foreignKey:UserID" json:"messages,omitempty"`
}
