package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a portal account. Usernames are unique case-insensitively.
type User struct {
	ID                 uint   `gorm:"primaryKey"`
	Username           string `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash       string `gorm:"size:255;not null"`
	Role               string `gorm:"size:16;index;not null;default:user"`
	SecurityQuestion   string `gorm:"size:255"`
	SecurityAnswerHash string `gorm:"size:255"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	FailedLoginAttempts int        `gorm:"default:0"`
	LockedUntil         *time.Time `gorm:"index"`
	LastLoginAt         *time.Time
	LastLoginIP         string `gorm:"size:64"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// PublicUser is the identity shape returned to clients.
type PublicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.Role}
}
