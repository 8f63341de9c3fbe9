package models

import (
	"strings"
	"time"

	"thai-travel-portal/internal/apperr"
)

// Destination is a place featured on the destinations page.
type Destination struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Slug        string    `gorm:"size:255;index" json:"slug"`
	Region      string    `gorm:"size:64;index" json:"region"`
	Category    string    `gorm:"size:64;index" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"size:1024" json:"imageUrl"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	IsActive    bool      `gorm:"index" json:"isActive"`
	SortOrder   int       `gorm:"default:0" json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Destination) TableName() string { return "destinations" }

func (d *Destination) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return apperr.Validation("name is required")
	}
	if d.Latitude < -90 || d.Latitude > 90 || d.Longitude < -180 || d.Longitude > 180 {
		return apperr.Validation("coordinates out of range")
	}
	if d.Slug == "" {
		d.Slug = Slugify(d.Name)
	}
	return nil
}
