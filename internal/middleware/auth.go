package middleware

import (
	"thai-travel-portal/internal/auth"
	"thai-travel-portal/internal/models"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
)

// LoadUser resolves the session cookie, if any, and puts the user into the
// context. It never rejects a request.
func LoadUser(store *auth.Store, cookies auth.CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := cookies.Token(c); token != "" {
			if user := store.ResolveCurrentUser(c.Request.Context(), token); user != nil {
				c.Set(auth.ContextKey, user)
			}
		}
		c.Next()
	}
}

// RequireRole rejects the request with 401 when no live session is present
// and 403 when the session's user has another role.
func RequireRole(store *auth.Store, cookies auth.CookieSettings, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := store.RequireRole(c.Request.Context(), cookies.Token(c), role)
		if err != nil {
			util.Fail(c, err)
			c.Abort()
			return
		}
		c.Set(auth.ContextKey, user)
		c.Next()
	}
}

func RequireAdmin(store *auth.Store, cookies auth.CookieSettings) gin.HandlerFunc {
	return RequireRole(store, cookies, models.RoleAdmin)
}
