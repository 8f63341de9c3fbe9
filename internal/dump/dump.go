// Package dump snapshots and restores the portal content tables. Users,
// sessions, audit logs and backups are never part of a dump.
package dump

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"thai-travel-portal/internal/models"

	"gorm.io/gorm"
)

// Version is written into every dump.
const Version = 1

// Dump is the full portal content. A nil slice in a dump being restored
// leaves that table untouched; an empty one clears it.
type Dump struct {
	Version              int                          `json:"version"`
	ExportedAt           time.Time                    `json:"exportedAt"`
	Destinations         []models.Destination         `json:"destinations"`
	MusicTracks          []models.MusicTrack          `json:"musicTracks"`
	News                 []models.News                `json:"news"`
	NewsWidgets          []models.NewsWidget          `json:"newsWidgets"`
	BlogPosts            []models.BlogPost            `json:"blogPosts"`
	BlogCategories       []models.BlogCategory        `json:"blogCategories"`
	PartnerNotifications []models.PartnerNotification `json:"partnerNotifications"`
	HeroSlides           []models.HeroSlide           `json:"heroSlides"`
	HomeSettings         *models.HomeSettings         `json:"homeSettings,omitempty"`
	CultureVideo         *models.CultureVideo         `json:"cultureVideo,omitempty"`
}

// Tables lists the exportable table names in export order.
var Tables = []string{
	"destinations",
	"music_tracks",
	"news",
	"news_widgets",
	"blog_posts",
	"blog_categories",
	"partner_notifications",
	"hero_slides",
	"home_settings",
	"culture_video",
}

// Collect reads every content table.
func Collect(ctx context.Context, db *gorm.DB) (*Dump, error) {
	d := &Dump{Version: Version, ExportedAt: time.Now().UTC()}
	tx := db.WithContext(ctx)

	for _, step := range []struct {
		name string
		dst  interface{}
	}{
		{"destinations", &d.Destinations},
		{"music_tracks", &d.MusicTracks},
		{"news", &d.News},
		{"news_widgets", &d.NewsWidgets},
		{"blog_posts", &d.BlogPosts},
		{"blog_categories", &d.BlogCategories},
		{"partner_notifications", &d.PartnerNotifications},
		{"hero_slides", &d.HeroSlides},
	} {
		if err := tx.Order("id ASC").Find(step.dst).Error; err != nil {
			return nil, fmt.Errorf("read %s: %w", step.name, err)
		}
	}

	var home models.HomeSettings
	if err := tx.Limit(1).Find(&home).Error; err != nil {
		return nil, fmt.Errorf("read home_settings: %w", err)
	}
	if home.ID != 0 {
		d.HomeSettings = &home
	}
	var video models.CultureVideo
	if err := tx.Limit(1).Find(&video).Error; err != nil {
		return nil, fmt.Errorf("read culture_video: %w", err)
	}
	if video.ID != 0 {
		d.CultureVideo = &video
	}
	return d, nil
}

// Parse decodes a JSON dump.
func Parse(raw []byte) (*Dump, error) {
	var d Dump
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	if d.Version > Version {
		return nil, fmt.Errorf("dump version %d is newer than supported version %d", d.Version, Version)
	}
	return &d, nil
}

// Restore replaces the tables present in d inside one transaction and
// returns the number of rows written per table.
func Restore(ctx context.Context, db *gorm.DB, d *Dump) (map[string]int, error) {
	counts := make(map[string]int)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replace(tx, counts, "destinations", d.Destinations); err != nil {
			return err
		}
		if err := replace(tx, counts, "music_tracks", d.MusicTracks); err != nil {
			return err
		}
		if err := replace(tx, counts, "news", d.News); err != nil {
			return err
		}
		if err := replace(tx, counts, "news_widgets", d.NewsWidgets); err != nil {
			return err
		}
		if err := replace(tx, counts, "blog_posts", d.BlogPosts); err != nil {
			return err
		}
		if err := replace(tx, counts, "blog_categories", d.BlogCategories); err != nil {
			return err
		}
		if err := replace(tx, counts, "partner_notifications", d.PartnerNotifications); err != nil {
			return err
		}
		if err := replace(tx, counts, "hero_slides", d.HeroSlides); err != nil {
			return err
		}

		if d.HomeSettings != nil {
			home := *d.HomeSettings
			home.ID = 1
			if err := tx.Save(&home).Error; err != nil {
				return fmt.Errorf("restore home_settings: %w", err)
			}
			counts["home_settings"] = 1
		}
		if d.CultureVideo != nil {
			video := *d.CultureVideo
			video.ID = 1
			if err := tx.Save(&video).Error; err != nil {
				return fmt.Errorf("restore culture_video: %w", err)
			}
			counts["culture_video"] = 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func replace[T any](tx *gorm.DB, counts map[string]int, name string, rows []T) error {
	if rows == nil {
		return nil
	}
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("clear %s: %w", name, err)
	}
	if len(rows) > 0 {
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("restore %s: %w", name, err)
		}
	}
	counts[name] = len(rows)
	return nil
}
