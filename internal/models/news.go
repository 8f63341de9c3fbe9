package models

import (
	"strings"
	"time"

	"thai-travel-portal/internal/apperr"
)

// News is an article on the news page.
type News struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"size:255;uniqueIndex" json:"slug"`
	Summary     string     `gorm:"size:1024" json:"summary"`
	Content     string     `gorm:"type:text" json:"content"`
	ImageURL    string     `gorm:"size:1024" json:"imageUrl"`
	Category    string     `gorm:"size:64;index" json:"category"`
	Author      string     `gorm:"size:128" json:"author"`
	IsActive    bool       `gorm:"index" json:"isActive"`
	Views       int64      `gorm:"default:0" json:"views"`
	PublishedAt *time.Time `gorm:"index" json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (News) TableName() string { return "news" }

func (n *News) Validate() error {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return apperr.Validation("title is required")
	}
	if n.Slug == "" {
		n.Slug = Slugify(n.Title)
	}
	if n.PublishedAt == nil && n.IsActive {
		now := time.Now()
		n.PublishedAt = &now
	}
	return nil
}

// NewsWidget is a sidebar block shown next to news articles.
type NewsWidget struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	LinkURL   string    `gorm:"size:1024" json:"linkUrl"`
	ImageURL  string    `gorm:"size:1024" json:"imageUrl"`
	Position  string    `gorm:"size:32;index;default:sidebar" json:"position"`
	IsActive  bool      `gorm:"index" json:"isActive"`
	SortOrder int       `gorm:"default:0" json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (NewsWidget) TableName() string { return "news_widgets" }

func (w *NewsWidget) Validate() error {
	w.Title = strings.TrimSpace(w.Title)
	if w.Title == "" {
		return apperr.Validation("title is required")
	}
	if w.Position == "" {
		w.Position = "sidebar"
	}
	return nil
}
