package repository

import (
	"context"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/models"

	"gorm.io/gorm"
)

// WidgetRepository stores news page widgets.
type WidgetRepository interface {
	Repository[models.NewsWidget]
	// ByPosition returns the active widgets of one slot in display order.
	ByPosition(ctx context.Context, position string) ([]models.NewsWidget, error)
}

type gormWidgetRepository struct {
	*GormRepository[models.NewsWidget]
}

func NewWidgetRepository(db *gorm.DB) WidgetRepository {
	return gormWidgetRepository{NewGormRepository[models.NewsWidget](db, Options{
		SearchColumns:  []string{"title", "content"},
		CategoryColumn: "position",
		Sorted:         true,
	})}
}

func (r gormWidgetRepository) ByPosition(ctx context.Context, position string) ([]models.NewsWidget, error) {
	var widgets []models.NewsWidget
	if err := r.db.WithContext(ctx).
		Where("position = ? AND is_active = ?", position, true).
		Order("sort_order ASC, id ASC").
		Find(&widgets).Error; err != nil {
		return nil, apperr.Upstream("list widgets", err)
	}
	return widgets, nil
}
