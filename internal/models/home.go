package models

import (
	"strings"
	"time"

	"thai-travel-portal/internal/apperr"
)

// HomeSettings is the single row configuring the home page. ID is always 1.
type HomeSettings struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	HeroTitle        string    `gorm:"size:255" json:"heroTitle"`
	HeroSubtitle     string    `gorm:"size:1024" json:"heroSubtitle"`
	WelcomeText      string    `gorm:"type:text" json:"welcomeText"`
	ShowMusic        bool      `json:"showMusic"`
	ShowNews         bool      `json:"showNews"`
	ShowDestinations bool      `json:"showDestinations"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (HomeSettings) TableName() string { return "home_settings" }

// HeroSlide is one slide of the home page carousel.
type HeroSlide struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255" json:"title"`
	Subtitle  string    `gorm:"size:1024" json:"subtitle"`
	ImageURL  string    `gorm:"size:1024;not null" json:"imageUrl"`
	LinkURL   string    `gorm:"size:1024" json:"linkUrl"`
	IsActive  bool      `gorm:"index" json:"isActive"`
	SortOrder int       `gorm:"default:0" json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (HeroSlide) TableName() string { return "hero_slides" }

func (s *HeroSlide) Validate() error {
	s.ImageURL = strings.TrimSpace(s.ImageURL)
	if s.ImageURL == "" {
		return apperr.Validation("imageUrl is required")
	}
	return nil
}

// CultureVideo is the single featured video on the home page. ID is always 1.
type CultureVideo struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255" json:"title"`
	VideoURL    string    `gorm:"size:1024" json:"videoUrl"`
	PosterURL   string    `gorm:"size:1024" json:"posterUrl"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `json:"isActive"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (CultureVideo) TableName() string { return "culture_video" }

func (v *CultureVideo) Validate() error {
	v.VideoURL = strings.TrimSpace(v.VideoURL)
	if v.IsActive && v.VideoURL == "" {
		return apperr.Validation("videoUrl is required for an active video")
	}
	return nil
}
