package controller

import (
	"net/http"
	"strconv"

	"taskpanel/database"
	"taskpanel/database/model"
	"taskpanel/logger"
	"taskpanel/web/entity"
	"taskpanel/web/middleware"
	"taskpanel/web/service"

	"github.com/gin-gonic/gin"
)

// APIController serves the JSON API: token auth plus the assignee-facing
// task operations.
type APIController struct {
	userService service.UserService
	taskService service.TaskService
	authService *service.AuthService
}

func NewAPIController(g *gin.RouterGroup) *APIController {
	a := &APIController{authService: service.NewAuthService()}
	a.initRouter(g)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup) {
	api := g.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", a.login)
	auth.POST("/refresh", a.refresh)

	tasks := api.Group("/tasks")
	tasks.Use(middleware.TokenAuth(a.authService))
	tasks.GET("", a.listTasks)
	tasks.PUT("/:id", a.updateTask)
	tasks.GET("/:id/report", a.taskReport)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// login verifies credentials and issues an access/refresh token pair. The
// error response never reveals whether the username exists.
func (a *APIController) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, entity.APIError{Error: "invalid credentials"})
		return
	}

	user := a.userService.CheckUser(req.Username, req.Password)
	if user == nil {
		logger.Warningf("failed API login for %q from %s", req.Username, getRemoteIp(c))
		c.JSON(http.StatusUnauthorized, entity.APIError{Error: "invalid credentials"})
		return
	}

	access, refresh, err := a.authService.IssueTokenPair(user)
	if err != nil {
		logger.Error("issue tokens:", err)
		c.JSON(http.StatusInternalServerError, entity.APIError{Error: "unable to issue tokens"})
		return
	}
	c.JSON(http.StatusOK, entity.TokenPair{Access: access, Refresh: refresh})
}

func (a *APIController) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		c.JSON(http.StatusUnauthorized, entity.APIError{Error: "invalid refresh token"})
		return
	}
	access, err := a.authService.Refresh(req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, entity.APIError{Error: "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, entity.AccessToken{Access: access})
}

// listTasks returns the caller's assigned tasks. An empty list is a valid,
// successful response.
func (a *APIController) listTasks(c *gin.Context) {
	user := middleware.LoginUser(c)
	tasks, err := a.taskService.ListForAssignee(user.Id)
	if err != nil {
		logger.Error("list tasks:", err)
		c.JSON(http.StatusInternalServerError, entity.APIError{Error: "unable to list tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// updateTask applies a partial update with merge semantics. Validation
// failures come back as a per-field error map.
func (a *APIController) updateTask(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, entity.APIError{Error: "task not found"})
		return
	}

	var patch service.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, entity.APIError{Error: "malformed request body"})
		return
	}

	user := middleware.LoginUser(c)
	task, err := a.taskService.UpdateTask(user, id, &patch)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, task)
	case database.IsNotFound(err):
		c.JSON(http.StatusNotFound, entity.APIError{Error: "task not found"})
	case err == service.ErrPermissionDenied:
		c.JSON(http.StatusForbidden, entity.APIError{Error: "permission denied"})
	default:
		if fieldErrs, ok := err.(service.FieldErrors); ok {
			c.JSON(http.StatusBadRequest, fieldErrs)
			return
		}
		logger.Error("update task:", err)
		c.JSON(http.StatusInternalServerError, entity.APIError{Error: "unable to update task"})
	}
}

// taskReport exposes the completion report to admins only. A task that is
// missing or not completed is reported as not found for every role, so the
// endpoint confirms neither existence nor state.
func (a *APIController) taskReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, entity.APIError{Error: "task not found"})
		return
	}

	task, err := a.taskService.GetTask(id)
	if err != nil || task.Status != model.StatusCompleted {
		c.JSON(http.StatusNotFound, entity.APIError{Error: "task not found"})
		return
	}

	user := middleware.LoginUser(c)
	if !service.CanViewReport(user) {
		c.JSON(http.StatusForbidden, entity.APIError{Error: "permission denied"})
		return
	}
	c.JSON(http.StatusOK, entity.NewTaskReport(task))
}
