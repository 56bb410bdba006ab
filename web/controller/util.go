package controller

import (
	"net"
	"net/http"
	"strings"

	"taskpanel/config"
	"taskpanel/web/session"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return ips[0]
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// html renders a panel template with the shared context: title, base path,
// version, pending flash messages and the logged-in user.
func html(c *gin.Context, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["base_path"] = c.GetString("base_path")
	data["cur_ver"] = config.GetVersion()
	data["flashes"] = session.Flashes(c)
	data["login_user"] = session.GetLoginUser(c)
	c.HTML(http.StatusOK, name, data)
}

// redirect sends the browser to a panel-relative path.
func redirect(c *gin.Context, path string) {
	c.Redirect(http.StatusFound, c.GetString("base_path")+strings.TrimPrefix(path, "/"))
}
