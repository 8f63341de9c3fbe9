package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/auth"
	"thai-travel-portal/internal/metrics"
	"thai-travel-portal/internal/models"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthHandler serves registration, login and password reset.
type AuthHandler struct {
	DB         *gorm.DB
	Store      *auth.Store
	Cookies    auth.CookieSettings
	BcryptCost int
	MaxFailed  int
	LockFor    time.Duration
	Log        *zap.Logger
}

func NewAuthHandler(db *gorm.DB, store *auth.Store, cookies auth.CookieSettings, bcryptCost, maxFailed int, lockFor time.Duration, log *zap.Logger) *AuthHandler {
	if maxFailed <= 0 {
		maxFailed = 5
	}
	if lockFor <= 0 {
		lockFor = 10 * time.Minute
	}
	return &AuthHandler{
		DB:         db,
		Store:      store,
		Cookies:    cookies,
		BcryptCost: bcryptCost,
		MaxFailed:  maxFailed,
		LockFor:    lockFor,
		Log:        log,
	}
}

// findUser looks the username up case-insensitively.
func (h *AuthHandler) findUser(c *gin.Context, username string) (*models.User, error) {
	var user models.User
	err := h.DB.WithContext(c.Request.Context()).
		Where("LOWER(username) = LOWER(?)", strings.TrimSpace(username)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Upstream("query user", err)
	}
	return &user, nil
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User) bool {
	token, err := h.Store.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		h.Log.Error("create session failed", zap.Uint("user_id", user.ID), zap.Error(err))
		util.Fail(c, err)
		return false
	}
	h.Cookies.SetCookie(c, token)
	return true
}

// ---------- register ----------

type registerReq struct {
	Username         string `json:"username" binding:"required"`
	Password         string `json:"password" binding:"required"`
	SecurityQuestion string `json:"securityQuestion" binding:"required,max=255"`
	SecurityAnswer   string `json:"securityAnswer" binding:"required,max=255"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "username, password, securityQuestion and securityAnswer are required")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := util.ValidateUsername(req.Username); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	answer := util.NormalizeAnswer(req.SecurityAnswer)
	if answer == "" {
		util.Error(c, http.StatusBadRequest, "securityAnswer is required")
		return
	}

	if _, err := h.findUser(c, req.Username); err == nil {
		util.Error(c, http.StatusConflict, "username already exists")
		return
	} else if !errors.Is(err, apperr.ErrNotFound) {
		util.Fail(c, err)
		return
	}

	pwHash, err := util.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		util.Fail(c, apperr.Upstream("hash password", err))
		return
	}
	answerHash, err := util.HashPassword(answer, h.BcryptCost)
	if err != nil {
		util.Fail(c, apperr.Upstream("hash security answer", err))
		return
	}

	user := models.User{
		Username:           req.Username,
		PasswordHash:       pwHash,
		Role:               models.RoleUser,
		SecurityQuestion:   strings.TrimSpace(req.SecurityQuestion),
		SecurityAnswerHash: answerHash,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, "username already exists")
			return
		}
		util.Fail(c, apperr.Upstream("create user", err))
		return
	}

	if !h.startSession(c, &user) {
		return
	}
	util.SuccessStatus(c, http.StatusCreated, util.Response{"user": user.Public()})
}

// ---------- login ----------

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.findUser(c, req.Username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("unknown_user").Inc()
			util.Error(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		util.Fail(c, err)
		return
	}

	now := time.Now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		util.Error(c, http.StatusUnauthorized, "account is locked, try again later")
		return
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		// lock after MaxFailed consecutive failures
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= h.MaxFailed {
			lockUntil := now.Add(h.LockFor)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
			h.Log.Warn("account locked", zap.String("username", user.Username), zap.String("ip", c.ClientIP()))
		}
		if err := h.DB.WithContext(c.Request.Context()).
			Model(user).
			Select("failed_login_attempts", "locked_until").
			Updates(user).Error; err != nil {
			h.Log.Error("record failed login", zap.Error(err))
		}
		metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		util.Error(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	user.LastLoginIP = c.ClientIP()
	if err := h.DB.WithContext(c.Request.Context()).
		Model(user).
		Select("failed_login_attempts", "locked_until", "last_login_at", "last_login_ip").
		Updates(user).Error; err != nil {
		h.Log.Error("record login", zap.Error(err))
	}

	if !h.startSession(c, user) {
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	util.Success(c, util.Response{"user": user.Public()})
}

// ---------- logout ----------

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Store.DestroySession(c.Request.Context(), h.Cookies.Token(c)); err != nil {
		h.Log.Warn("destroy session failed", zap.Error(err))
	}
	h.Cookies.ClearCookie(c)
	util.Success(c, util.Response{"message": "logged out"})
}

// ---------- password reset ----------

func (h *AuthHandler) SecurityQuestion(c *gin.Context) {
	username := c.Query("username")
	if strings.TrimSpace(username) == "" {
		util.Error(c, http.StatusBadRequest, "username is required")
		return
	}
	user, err := h.findUser(c, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			util.Error(c, http.StatusNotFound, "user not found")
			return
		}
		util.Fail(c, err)
		return
	}
	if user.SecurityQuestion == "" {
		util.Error(c, http.StatusNotFound, "no security question set")
		return
	}
	util.Success(c, util.Response{"question": user.SecurityQuestion})
}

type resetPasswordReq struct {
	Username       string `json:"username" binding:"required"`
	SecurityAnswer string `json:"securityAnswer" binding:"required"`
	NewPassword    string `json:"newPassword" binding:"required"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "username, securityAnswer and newPassword are required")
		return
	}
	if err := util.ValidatePassword(req.NewPassword); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.findUser(c, req.Username)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		util.Fail(c, err)
		return
	}
	if user == nil || !util.CheckPassword(util.NormalizeAnswer(req.SecurityAnswer), user.SecurityAnswerHash) {
		util.Error(c, http.StatusUnauthorized, "invalid username or security answer")
		return
	}

	hash, err := util.HashPassword(req.NewPassword, h.BcryptCost)
	if err != nil {
		util.Fail(c, apperr.Upstream("hash password", err))
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).
		Model(user).
		Updates(map[string]interface{}{
			"password_hash":         hash,
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}).Error; err != nil {
		util.Fail(c, apperr.Upstream("update password", err))
		return
	}

	if err := h.Store.DestroyUserSessions(c.Request.Context(), user.ID); err != nil {
		h.Log.Warn("destroy sessions after reset", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	util.Success(c, util.Response{"message": "password updated, please sign in again"})
}
