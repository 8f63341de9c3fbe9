// Package repository holds the gorm-backed stores behind the content
// handlers. Errors returned are classified with apperr.
package repository

import (
	"context"
	"errors"
	"math"
	"strings"

	"thai-travel-portal/internal/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListQuery filters one page of a list.
type ListQuery struct {
	Active   *bool
	Category string
	Search   string
	Page     int
	Limit    int
}

func (q ListQuery) offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		// past any real row count
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// Options describe the searchable shape of a table.
type Options struct {
	// SearchColumns are matched with LIKE by ListQuery.Search.
	SearchColumns []string
	// CategoryColumn is compared with ListQuery.Category; empty disables it.
	CategoryColumn string
	// Sorted orders by sort_order before id.
	Sorted bool
}

// Repository is the storage contract every content resource satisfies.
type Repository[T any] interface {
	List(ctx context.Context, q ListQuery) ([]T, int64, error)
	Get(ctx context.Context, id uint) (*T, error)
	Create(ctx context.Context, item *T) error
	Save(ctx context.Context, item *T) error
	Delete(ctx context.Context, id uint) error
}

// GormRepository implements Repository for any gorm model with an "id"
// primary key and an "is_active" column.
type GormRepository[T any] struct {
	db   *gorm.DB
	opts Options
}

func NewGormRepository[T any](db *gorm.DB, opts Options) *GormRepository[T] {
	return &GormRepository[T]{db: db, opts: opts}
}

func (r *GormRepository[T]) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T))
}

func (r *GormRepository[T]) List(ctx context.Context, q ListQuery) ([]T, int64, error) {
	base := r.base(ctx)
	if q.Active != nil {
		base = base.Where("is_active = ?", *q.Active)
	}
	if q.Category != "" && r.opts.CategoryColumn != "" {
		base = base.Where(clause.Eq{Column: clause.Column{Name: r.opts.CategoryColumn}, Value: q.Category})
	}
	if s := strings.TrimSpace(q.Search); s != "" && len(r.opts.SearchColumns) > 0 {
		like := "%" + s + "%"
		conds := make([]string, 0, len(r.opts.SearchColumns))
		args := make([]interface{}, 0, len(r.opts.SearchColumns))
		for _, col := range r.opts.SearchColumns {
			conds = append(conds, col+" LIKE ?")
			args = append(args, like)
		}
		base = base.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Upstream("count rows", err)
	}

	order := "id DESC"
	if r.opts.Sorted {
		order = "sort_order ASC, id DESC"
	}
	items := make([]T, 0)
	tx := base.Session(&gorm.Session{}).Order(order)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit).Offset(q.offset())
	}
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, apperr.Upstream("list rows", err)
	}
	return items, total, nil
}

func (r *GormRepository[T]) Get(ctx context.Context, id uint) (*T, error) {
	item := new(T)
	if err := r.base(ctx).First(item, id).Error; err != nil {
		return nil, classify("load row", err)
	}
	return item, nil
}

// BySlug returns the active row with slug and bumps its view counter.
func (r *GormRepository[T]) BySlug(ctx context.Context, slug string) (*T, error) {
	item := new(T)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(new(T)).
			Where("slug = ? AND is_active = ?", slug, true).
			UpdateColumn("views", gorm.Expr("views + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("slug = ?", slug).First(item).Error
	})
	if err != nil {
		return nil, classify("load by slug", err)
	}
	return item, nil
}

func (r *GormRepository[T]) Create(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return classify("create row", err)
	}
	return nil
}

func (r *GormRepository[T]) Save(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return classify("save row", err)
	}
	return nil
}

func (r *GormRepository[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return classify("delete row", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("not found")
	}
	return nil
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict("a record with the same unique value already exists")
	}
	return apperr.Upstream(op, err)
}
