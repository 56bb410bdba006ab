package controller

import (
	"taskpanel/config"
	"taskpanel/logger"
	"taskpanel/web/service"
	"taskpanel/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the panel login request.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// IndexController handles the login screen and session lifecycle for the
// admin panel.
type IndexController struct {
	BaseController

	userService service.UserService
}

func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.POST("/login", a.login)
	g.GET("/logout", a.logout)
}

// index shows the login page, or forwards straight to the panel when a
// session already exists.
func (a *IndexController) index(c *gin.Context) {
	if session.IsLogin(c) {
		redirect(c, "panel/")
		return
	}
	html(c, "login.html", "Sign in", nil)
}

// login authenticates panel access. Credential failures and missing panel
// roles surface the same message so role existence cannot be probed.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil || form.Username == "" || form.Password == "" {
		session.AddFlash(c, "Invalid login or insufficient permissions.")
		redirect(c, "")
		return
	}

	user := a.userService.CheckUser(form.Username, form.Password)
	if user == nil || !service.IsAdmin(user) {
		logger.Warningf("failed panel login for %q from %s", form.Username, getRemoteIp(c))
		session.AddFlash(c, "Invalid login or insufficient permissions.")
		redirect(c, "")
		return
	}

	if err := session.SetMaxAge(c, config.GetSessionMaxAge()*60); err != nil {
		logger.Warning("unable to set session max age:", err)
	}
	if err := session.SetLoginUser(c, user); err != nil {
		logger.Warning("unable to save session:", err)
	}

	logger.Infof("%s logged in to the panel from %s", user.Username, getRemoteIp(c))
	redirect(c, "panel/")
}

func (a *IndexController) logout(c *gin.Context) {
	if user := session.GetLoginUser(c); user != nil {
		logger.Infof("%s logged out", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to clear session:", err)
	}
	redirect(c, "")
}
