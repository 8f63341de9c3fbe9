package notify

import (
	"context"
	"errors"
	"math/rand/v2"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Selector picks one eligible notification for a page view.
type Selector struct {
	db      *gorm.DB
	counter ViewCounter
	log     *zap.Logger
	intn    func(n int) int
}

func NewSelector(db *gorm.DB, counter ViewCounter, log *zap.Logger) *Selector {
	return &Selector{db: db, counter: counter, log: log, intn: rand.IntN}
}

// Counter exposes the view counter the selector filters with.
func (s *Selector) Counter() ViewCounter { return s.counter }

// Candidates returns every active notification targeting page (and item,
// when hasItem is set).
func (s *Selector) Candidates(ctx context.Context, page models.Page, itemID uint, hasItem bool) ([]models.PartnerNotification, error) {
	var rows []models.PartnerNotification
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, apperr.Upstream("query partner notifications", err)
	}

	out := rows[:0]
	for i := range rows {
		if rows[i].Targets(page, itemID, hasItem) {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

// Pick returns a random candidate, or nil when none is eligible. With a
// visitorID, candidates whose view cap is exhausted for that visitor are
// skipped; counter failures keep the candidate.
func (s *Selector) Pick(ctx context.Context, page models.Page, itemID uint, hasItem bool, visitorID string) (*models.PartnerNotification, error) {
	cands, err := s.Candidates(ctx, page, itemID, hasItem)
	if err != nil {
		return nil, err
	}

	if visitorID != "" && s.counter != nil {
		kept := cands[:0]
		for i := range cands {
			n := &cands[i]
			if !n.LimitShows {
				kept = append(kept, *n)
				continue
			}
			views, err := s.counter.Views(ctx, visitorID, n.ID)
			if err != nil {
				s.log.Warn("read notification views failed", zap.Uint("id", n.ID), zap.Error(err))
				kept = append(kept, *n)
				continue
			}
			if !CapReached(n, views) {
				kept = append(kept, *n)
			}
		}
		cands = kept
	}

	if len(cands) == 0 {
		return nil, nil
	}
	picked := cands[s.intn(len(cands))]
	return &picked, nil
}

// RecordView counts one display of notification id for visitorID.
func (s *Selector) RecordView(ctx context.Context, visitorID string, id uint) (int, error) {
	if visitorID == "" {
		return 0, apperr.Validation("visitor session is required")
	}
	var n models.PartnerNotification
	if err := s.db.WithContext(ctx).Select("id").First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFound("notification not found")
		}
		return 0, apperr.Upstream("query partner notification", err)
	}
	views, err := s.counter.Increment(ctx, visitorID, id)
	if err != nil {
		return 0, apperr.Upstream("record notification view", err)
	}
	return views, nil
}
