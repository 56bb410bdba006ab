package middleware

import (
	"net/http"

	"taskpanel/web/service"
	"taskpanel/web/session"

	"github.com/gin-gonic/gin"
)

// RoleRequired guards panel routes behind session login plus role membership.
// Denied users are sent back to the login screen with a flash message rather
// than a hard error.
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := session.GetLoginUser(c)
		if user == nil {
			c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
			c.Abort()
			return
		}
		if !service.HasAnyRole(user, roles...) {
			session.AddFlash(c, "Insufficient permissions.")
			c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
			c.Abort()
			return
		}
		c.Next()
	}
}
