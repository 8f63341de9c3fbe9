package models

import (
	"strings"
	"time"

	"thai-travel-portal/internal/apperr"
)

// BlogCategory groups blog posts.
type BlogCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Slug        string    `gorm:"size:128;uniqueIndex" json:"slug"`
	Description string    `gorm:"size:1024" json:"description"`
	IsActive    bool      `gorm:"index" json:"isActive"`
	SortOrder   int       `gorm:"default:0" json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (BlogCategory) TableName() string { return "blog_categories" }

func (b *BlogCategory) Validate() error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return apperr.Validation("name is required")
	}
	if b.Slug == "" {
		b.Slug = Slugify(b.Name)
	}
	return nil
}

// BlogPost is a travel blog entry.
type BlogPost struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"size:255;uniqueIndex" json:"slug"`
	Excerpt     string     `gorm:"size:1024" json:"excerpt"`
	Content     string     `gorm:"type:text" json:"content"`
	CoverURL    string     `gorm:"size:1024" json:"coverUrl"`
	Category    string     `gorm:"size:128;index" json:"category"`
	Author      string     `gorm:"size:128" json:"author"`
	Tags        []string   `gorm:"serializer:json" json:"tags"`
	IsActive    bool       `gorm:"index" json:"isActive"`
	Views       int64      `gorm:"default:0" json:"views"`
	PublishedAt *time.Time `gorm:"index" json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (BlogPost) TableName() string { return "blog_posts" }

func (p *BlogPost) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return apperr.Validation("title is required")
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.PublishedAt == nil && p.IsActive {
		now := time.Now()
		p.PublishedAt = &now
	}
	return nil
}
