package auth

import (
	"net/http"
	"time"

	"thai-travel-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// ContextKey is where middleware stores the resolved *models.User.
const ContextKey = "currentUser"

// CurrentUser returns the user resolved for this request, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// CookieSettings controls the session cookie attributes.
type CookieSettings struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// SetCookie writes the session cookie (httpOnly, SameSite=Lax, path /).
func (cs CookieSettings) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cs.Name, token, int(cs.TTL.Seconds()), "/", "", cs.Secure, true)
}

// ClearCookie expires the session cookie.
func (cs CookieSettings) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cs.Name, "", -1, "/", "", cs.Secure, true)
}

// Token reads the session token from the request cookie.
func (cs CookieSettings) Token(c *gin.Context) string {
	token, err := c.Cookie(cs.Name)
	if err != nil {
		return ""
	}
	return token
}
