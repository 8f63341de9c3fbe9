package handler

import (
	"net/http"
	"strconv"
	"time"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/metrics"
	"thai-travel-portal/internal/models"
	"thai-travel-portal/internal/notify"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// visitorCookieMaxAge keeps the visitor id for a year.
const visitorCookieMaxAge = 365 * 24 * 60 * 60

// NotificationHandler serves the public partner notification endpoints.
type NotificationHandler struct {
	Selector *notify.Selector
	Secure   bool
	Log      *zap.Logger
}

func NewNotificationHandler(selector *notify.Selector, secure bool, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Selector: selector, Secure: secure, Log: log}
}

// visitorID returns the visitor cookie, issuing one when absent.
func (h *NotificationHandler) visitorID(c *gin.Context) string {
	if v, err := c.Cookie(notify.VisitorCookie); err == nil && v != "" && len(v) <= 128 {
		return v
	}
	id, err := util.VisitorID(time.Now())
	if err != nil {
		h.Log.Warn("generate visitor id failed", zap.Error(err))
		return ""
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(notify.VisitorCookie, id, visitorCookieMaxAge, "/", "", h.Secure, true)
	return id
}

// Random picks one eligible notification for ?page=&currentItemId=.
func (h *NotificationHandler) Random(c *gin.Context) {
	page, ok := models.ParsePage(c.Query("page"))
	if !ok {
		util.Error(c, http.StatusBadRequest, "page must be one of home, blog, news, destinations")
		return
	}

	var itemID uint
	hasItem := false
	if s := c.Query("currentItemId"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			util.Error(c, http.StatusBadRequest, "invalid currentItemId")
			return
		}
		itemID, hasItem = uint(id), true
	}

	n, err := h.Selector.Pick(c.Request.Context(), page, itemID, hasItem, h.visitorID(c))
	if err != nil {
		h.Log.Error("pick notification failed", zap.String("page", string(page)), zap.Error(err))
		util.Fail(c, err)
		return
	}
	if n != nil {
		metrics.NotificationsServed.WithLabelValues(string(page)).Inc()
	}
	util.Success(c, util.Response{"notification": n})
}

// RecordView counts one display for the visitor cookie.
func (h *NotificationHandler) RecordView(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	visitor, err := c.Cookie(notify.VisitorCookie)
	if err != nil || visitor == "" {
		util.Fail(c, apperr.Validation("visitor session is required"))
		return
	}

	views, err := h.Selector.RecordView(c.Request.Context(), visitor, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUpstream {
			h.Log.Error("record view failed", zap.Uint("id", id), zap.Error(err))
		}
		util.Fail(c, err)
		return
	}
	metrics.NotificationViews.Inc()
	util.Success(c, util.Response{"views": views})
}
