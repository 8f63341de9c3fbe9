package models

import "time"

// Session is one authenticated browser session. The token is the cookie value.
type Session struct {
	Token     string    `gorm:"primaryKey;size:128"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string { return "app_sessions" }

// Expired reports whether the session is invalid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
