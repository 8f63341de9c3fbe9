package models

import (
	"strings"
	"time"

	"thai-travel-portal/internal/apperr"
)

// MusicTrack is a track on the music page.
type MusicTrack struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Artist      string    `gorm:"size:255" json:"artist"`
	Category    string    `gorm:"size:64;index" json:"category"`
	AudioURL    string    `gorm:"size:1024;not null" json:"audioUrl"`
	CoverURL    string    `gorm:"size:1024" json:"coverUrl"`
	DurationSec int       `json:"durationSec"`
	IsActive    bool      `gorm:"index" json:"isActive"`
	SortOrder   int       `gorm:"default:0" json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (MusicTrack) TableName() string { return "music_tracks" }

func (m *MusicTrack) Validate() error {
	m.Title = strings.TrimSpace(m.Title)
	m.AudioURL = strings.TrimSpace(m.AudioURL)
	switch {
	case m.Title == "":
		return apperr.Validation("title is required")
	case m.AudioURL == "":
		return apperr.Validation("audioUrl is required")
	case m.DurationSec < 0:
		return apperr.Validation("durationSec must not be negative")
	}
	return nil
}
