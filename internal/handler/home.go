package handler

import (
	"errors"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// singletonID is the primary key of every single-row table.
const singletonID = 1

// Singleton serves a table that always holds exactly one row.
type Singleton[T any] struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func (s Singleton[T]) load(c *gin.Context) (*T, error) {
	item := new(T)
	if err := s.DB.WithContext(c.Request.Context()).First(item, singletonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("settings not initialised")
		}
		return nil, apperr.Upstream("load settings", err)
	}
	return item, nil
}

func (s Singleton[T]) Get(c *gin.Context) {
	item, err := s.load(c)
	if err != nil {
		s.Log.Error("load singleton failed", zap.Error(err))
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"item": item})
}

// Put merges the body into the row.
func (s Singleton[T]) Put(c *gin.Context) {
	item, err := s.load(c)
	if err != nil {
		util.Fail(c, err)
		return
	}
	if err := bindBody(c, item); err != nil {
		util.Fail(c, err)
		return
	}
	if v, ok := any(item).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			util.Fail(c, err)
			return
		}
	}
	if err := s.DB.WithContext(c.Request.Context()).Save(item).Error; err != nil {
		s.Log.Error("save singleton failed", zap.Error(err))
		util.Fail(c, apperr.Upstream("save settings", err))
		return
	}
	util.Success(c, util.Response{"item": item})
}
