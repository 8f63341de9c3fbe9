package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/models"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler serves the admin audit trail.
type LogHandler struct {
	DB     *gorm.DB
	Paging Paging
}

func NewLogHandler(db *gorm.DB, paging Paging) *LogHandler {
	return &LogHandler{DB: db, Paging: paging}
}

// ListLogs pages through audit logs, newest first. Filters: start / end
// (YYYY-MM-DD, inclusive), userId, method and q (path substring).
func (h *LogHandler) ListLogs(c *gin.Context) {
	page := util.IntParam(c.Query("page"), 1, util.MaxPage)
	limit := util.IntParam(c.Query("limit"), h.Paging.PageSize, h.Paging.MaxPageSize)

	base := h.DB.WithContext(c.Request.Context()).Model(&models.AuditLog{})

	if s := c.Query("start"); s != "" {
		start, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		base = base.Where("created_at >= ?", start)
	}
	if s := c.Query("end"); s != "" {
		end, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
		base = base.Where("created_at < ?", end.Add(24*time.Hour))
	}
	if s := c.Query("userId"); s != "" {
		uid, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			util.Error(c, http.StatusBadRequest, "invalid userId")
			return
		}
		base = base.Where("user_id = ?", uid)
	}
	if m := strings.ToUpper(strings.TrimSpace(c.Query("method"))); m != "" {
		base = base.Where("method = ?", m)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		base = base.Where("path LIKE ?", "%"+q+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Fail(c, apperr.Upstream("count audit logs", err))
		return
	}

	logs := make([]models.AuditLog, 0)
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {
		util.Fail(c, apperr.Upstream("list audit logs", err))
		return
	}

	util.Success(c, util.Response{
		"items":      logs,
		"pagination": util.NewPagination(page, limit, total),
	})
}
