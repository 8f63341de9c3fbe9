package handler

import (
	"net/http"

	"thai-travel-portal/internal/auth"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
)

// GetMe returns the signed-in user. Runs after middleware.LoadUser.
func GetMe(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "not signed in")
		return
	}
	util.Success(c, util.Response{"user": user.Public()})
}
