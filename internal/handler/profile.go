package handler

import (
	"net/http"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/auth"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChangePasswordReq changes the signed-in user's password.
type ChangePasswordReq struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ChangePassword checks the old password, stores the new hash and signs the
// user out of every other session.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "not signed in")
		return
	}

	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "oldPassword and newPassword are required")
		return
	}
	if err := util.ValidatePassword(req.NewPassword); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if !util.CheckPassword(req.OldPassword, user.PasswordHash) {
		util.Error(c, http.StatusBadRequest, "old password is incorrect")
		return
	}

	hash, err := util.HashPassword(req.NewPassword, h.BcryptCost)
	if err != nil {
		util.Fail(c, apperr.Upstream("hash password", err))
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Model(user).Update("password_hash", hash).Error; err != nil {
		util.Fail(c, apperr.Upstream("update password", err))
		return
	}

	// every other session is dropped; the caller gets a fresh one
	if err := h.Store.DestroyUserSessions(c.Request.Context(), user.ID); err != nil {
		h.Log.Warn("destroy sessions after password change", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	if !h.startSession(c, user) {
		return
	}
	util.Success(c, util.Response{"message": "password changed"})
}
