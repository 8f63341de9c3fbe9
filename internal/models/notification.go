package models

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"thai-travel-portal/internal/apperr"
)

// Page is a public page a partner notification can appear on.
type Page string

const (
	PageHome         Page = "home"
	PageBlog         Page = "blog"
	PageNews         Page = "news"
	PageDestinations Page = "destinations"
)

// ParsePage validates a page name from a query string.
func ParsePage(s string) (Page, bool) {
	switch p := Page(strings.ToLower(strings.TrimSpace(s))); p {
	case PageHome, PageBlog, PageNews, PageDestinations:
		return p, true
	}
	return "", false
}

// PageSet holds the per-page display switches.
type PageSet struct {
	Home         bool `json:"home"`
	Blog         bool `json:"blog"`
	News         bool `json:"news"`
	Destinations bool `json:"destinations"`
}

func (s PageSet) Has(p Page) bool {
	switch p {
	case PageHome:
		return s.Home
	case PageBlog:
		return s.Blog
	case PageNews:
		return s.News
	case PageDestinations:
		return s.Destinations
	}
	return false
}

const (
	ScopePages    = "pages"
	ScopeSpecific = "specific"
)

// MaxShowAfterSeconds is the longest allowed reveal delay, one day.
const MaxShowAfterSeconds = 24 * 60 * 60

// PartnerNotification is a promotional banner campaign.
type PartnerNotification struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Title              string    `gorm:"size:255;not null" json:"title"`
	Content            string    `gorm:"type:text" json:"content"`
	CTAText            string    `gorm:"size:128" json:"ctaText"`
	CTAURL             string    `gorm:"size:1024" json:"ctaUrl"`
	IsActive           bool      `gorm:"index" json:"isActive"`
	ShowAfterSeconds   int       `json:"showAfterSeconds"`
	ShowOnPages        PageSet   `gorm:"serializer:json" json:"showOnPages"`
	LimitShows         bool      `json:"limitShows"`
	MaxShowsPerSession int       `json:"maxShowsPerSession"`
	ShowRandomly       bool      `json:"showRandomly"`
	TargetScope        string    `gorm:"size:16;default:pages" json:"targetScope"`
	TargetedNewsIDs    []uint    `gorm:"serializer:json" json:"targetedNewsIds"`
	TargetedBlogIDs    []uint    `gorm:"serializer:json" json:"targetedBlogIds"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (PartnerNotification) TableName() string { return "partner_notifications" }

func (n *PartnerNotification) Validate() error {
	n.Title = strings.TrimSpace(n.Title)
	n.CTAURL = strings.TrimSpace(n.CTAURL)
	if n.TargetScope == "" {
		n.TargetScope = ScopePages
	}

	switch {
	case n.Title == "":
		return apperr.Validation("title is required")
	case n.ShowAfterSeconds < 0 || n.ShowAfterSeconds > MaxShowAfterSeconds:
		return apperr.Validation("showAfterSeconds must be between 0 and 86400")
	case n.LimitShows && n.MaxShowsPerSession < 1:
		return apperr.Validation("maxShowsPerSession must be at least 1 when limitShows is set")
	case n.TargetScope != ScopePages && n.TargetScope != ScopeSpecific:
		return apperr.Validation("targetScope must be pages or specific")
	}

	if n.CTAURL != "" {
		u, err := url.Parse(n.CTAURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return apperr.Validation("ctaUrl must be an absolute http(s) url")
		}
	}
	return nil
}

// Targets reports whether the notification may appear on page for the given
// content item. hasItem is false when the page is not showing a single item.
func (n *PartnerNotification) Targets(page Page, itemID uint, hasItem bool) bool {
	if !n.IsActive {
		return false
	}
	if n.TargetScope != ScopeSpecific {
		return n.ShowOnPages.Has(page)
	}
	if !hasItem {
		return false
	}
	switch page {
	case PageNews:
		return slices.Contains(n.TargetedNewsIDs, itemID)
	case PageBlog:
		return slices.Contains(n.TargetedBlogIDs, itemID)
	}
	return false
}
