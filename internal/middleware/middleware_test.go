package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"thai-travel-portal/internal/auth"
	"thai-travel-portal/internal/config"
	"thai-travel-portal/internal/database"
	"thai-travel-portal/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testCookies = auth.CookieSettings{Name: "app_session", TTL: time.Hour}

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) (*auth.Store, *gorm.DB) {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "mw.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))
	return auth.NewStore(db, time.Hour, zap.NewNop()), db
}

func sessionFor(t *testing.T, store *auth.Store, db *gorm.DB, username, role string) string {
	t.Helper()
	u := models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&u).Error)
	token, err := store.CreateSession(context.Background(), u.ID)
	require.NoError(t, err)
	return token
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookies.Name, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAdmin(t *testing.T) {
	store, db := setup(t)
	admin := sessionFor(t, store, db, "admin", models.RoleAdmin)
	user := sessionFor(t, store, db, "nok", models.RoleUser)

	r := gin.New()
	r.POST("/x", RequireAdmin(store, testCookies), func(c *gin.Context) {
		u, ok := auth.CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, u.Username)
	})

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/x", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/x", "bogus").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/x", user).Code)

	w := do(r, http.MethodPost, "/x", admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestLoadUser(t *testing.T) {
	store, db := setup(t)
	token := sessionFor(t, store, db, "nok", models.RoleUser)

	r := gin.New()
	r.Use(LoadUser(store, testCookies))
	r.GET("/me", func(c *gin.Context) {
		if u, ok := auth.CurrentUser(c); ok {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	assert.Equal(t, "anonymous", do(r, http.MethodGet, "/me", "").Body.String())
	assert.Equal(t, "anonymous", do(r, http.MethodGet, "/me", "bogus").Body.String())
	assert.Equal(t, "nok", do(r, http.MethodGet, "/me", token).Body.String())
}

func TestAuditMiddleware(t *testing.T) {
	store, db := setup(t)
	admin := sessionFor(t, store, db, "admin", models.RoleAdmin)

	r := gin.New()
	r.Use(LoadUser(store, testCookies), AuditMiddleware(db, zap.NewNop()))
	r.GET("/api/news", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.DELETE("/api/news/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(r, http.MethodGet, "/api/news", admin)
	do(r, http.MethodDelete, "/api/news/3", "")
	do(r, http.MethodDelete, "/api/news/4", admin)

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, http.MethodDelete, logs[0].Method)
	assert.Equal(t, "/api/news/4", logs[0].Path)
	assert.Equal(t, http.StatusOK, logs[0].Status)
	require.NotNil(t, logs[0].UserID)
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)

	r := gin.New()
	r.POST("/login", RateLimit(rl), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
	w := do(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// other ips have their own bucket
	assert.True(t, rl.Allow("198.51.100.7"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 0, rl.Cleanup())

	rl.idle = -time.Second
	assert.Equal(t, 2, rl.Cleanup())
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ok", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/missing", "").Code)
}
