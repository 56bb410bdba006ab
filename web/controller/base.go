// Package controller provides the HTTP handlers for the taskpanel JSON API
// and the server-rendered admin panel.
package controller

import (
	"net/http"

	"taskpanel/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for panel controllers.
type BaseController struct{}

// checkLogin verifies session authentication and sends anonymous visitors
// back to the login screen.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
		c.Abort()
	} else {
		c.Next()
	}
}
