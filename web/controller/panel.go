package controller

import (
	"strconv"
	"strings"
	"time"

	"taskpanel/database"
	"taskpanel/database/model"
	"taskpanel/logger"
	"taskpanel/web/middleware"
	"taskpanel/web/service"
	"taskpanel/web/session"

	"github.com/gin-gonic/gin"
)

// PanelController serves the server-rendered admin screens: dashboard, task
// management for admins and user/role management for superadmins.
type PanelController struct {
	BaseController

	userService service.UserService
	taskService service.TaskService
}

func NewPanelController(g *gin.RouterGroup) *PanelController {
	a := &PanelController{}
	a.initRouter(g)
	return a
}

func (a *PanelController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/panel")
	g.Use(a.checkLogin)
	g.Use(middleware.RoleRequired(model.RoleAdmin, model.RoleSuperAdmin))

	g.GET("/", a.dashboard)

	g.GET("/tasks", a.taskList)
	g.GET("/tasks/create", a.taskCreateForm)
	g.POST("/tasks/create", a.taskCreate)
	g.GET("/tasks/:id", a.taskDetail)
	g.GET("/tasks/:id/update", a.taskUpdateForm)
	g.POST("/tasks/:id/update", a.taskUpdate)

	su := g.Group("")
	su.Use(middleware.RoleRequired(model.RoleSuperAdmin))
	su.GET("/users", a.userList)
	su.GET("/users/create", a.userCreateForm)
	su.POST("/users/create", a.userCreate)
	su.GET("/users/:id/edit-role", a.userRoleForm)
	su.POST("/users/:id/edit-role", a.userRoleUpdate)
	su.GET("/users/:id/delete", a.userDeleteConfirm)
	su.POST("/users/:id/delete", a.userDelete)
	su.GET("/admins", a.adminList)
}

func (a *PanelController) dashboard(c *gin.Context) {
	html(c, "dashboard.html", "Dashboard", nil)
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}

// ---- tasks ----

func (a *PanelController) taskList(c *gin.Context) {
	actor := session.GetLoginUser(c)
	tasks, err := a.taskService.ListScoped(actor)
	if err != nil {
		logger.Error("list tasks:", err)
		session.AddFlash(c, "Unable to load tasks.")
	}
	html(c, "tasks_list.html", "Tasks", gin.H{"tasks": tasks})
}

func (a *PanelController) taskCreateForm(c *gin.Context) {
	a.renderTaskForm(c, &model.Task{}, nil, "panel/tasks/create")
}

func (a *PanelController) taskCreate(c *gin.Context) {
	task, errs := a.bindTaskForm(c, &model.Task{})
	if len(errs) == 0 {
		if err := a.taskService.CreateTask(task); err != nil {
			if fieldErrs, ok := err.(service.FieldErrors); ok {
				errs = fieldErrs
			} else {
				logger.Error("create task:", err)
				session.AddFlash(c, "Unable to create task.")
				redirect(c, "panel/tasks")
				return
			}
		}
	}
	if len(errs) > 0 {
		a.renderTaskForm(c, task, errs, "panel/tasks/create")
		return
	}
	session.AddFlash(c, "Task created.")
	redirect(c, "panel/tasks")
}

// taskDetail renders a task; non-completed tasks carry an explicit
// "no completion report available" placeholder instead of blank fields.
func (a *PanelController) taskDetail(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		session.AddFlash(c, "Task not found.")
		redirect(c, "panel/tasks")
		return
	}
	task, err := a.taskService.GetTask(id)
	if err != nil {
		session.AddFlash(c, "Task not found.")
		redirect(c, "panel/tasks")
		return
	}
	html(c, "task_detail.html", task.Title, gin.H{
		"task":      task,
		"completed": task.Status == model.StatusCompleted,
	})
}

func (a *PanelController) taskUpdateForm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		session.AddFlash(c, "Task not found.")
		redirect(c, "panel/tasks")
		return
	}
	task, err := a.taskService.GetTask(id)
	if err != nil {
		session.AddFlash(c, "Task not found.")
		redirect(c, "panel/tasks")
		return
	}
	a.renderTaskForm(c, task, nil, "panel/tasks/"+strconv.Itoa(id)+"/update")
}

func (a *PanelController) taskUpdate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		session.AddFlash(c, "Task not found.")
		redirect(c, "panel/tasks")
		return
	}

	patch, formTask, errs := a.bindTaskPatch(c)
	if len(errs) > 0 {
		formTask.Id = id
		a.renderTaskForm(c, formTask, errs, "panel/tasks/"+strconv.Itoa(id)+"/update")
		return
	}

	actor := session.GetLoginUser(c)
	_, err := a.taskService.UpdateTask(actor, id, patch)
	switch {
	case err == nil:
		session.AddFlash(c, "Task updated.")
		redirect(c, "panel/tasks")
	case database.IsNotFound(err):
		session.AddFlash(c, "Task not found.")
		redirect(c, "panel/tasks")
	case err == service.ErrPermissionDenied:
		session.AddFlash(c, "Insufficient permissions.")
		redirect(c, "panel/tasks")
	default:
		if fieldErrs, ok := err.(service.FieldErrors); ok {
			formTask.Id = id
			a.renderTaskForm(c, formTask, fieldErrs, "panel/tasks/"+strconv.Itoa(id)+"/update")
			return
		}
		logger.Error("update task:", err)
		session.AddFlash(c, "Unable to update task.")
		redirect(c, "panel/tasks")
	}
}

// bindTaskForm reads the create form into a task, collecting field errors
// for values that fail to parse.
func (a *PanelController) bindTaskForm(c *gin.Context, task *model.Task) (*model.Task, service.FieldErrors) {
	errs := service.FieldErrors{}

	task.Title = strings.TrimSpace(c.PostForm("title"))
	task.Description = c.PostForm("description")
	task.Status = model.TaskStatus(c.PostForm("status"))
	task.CompletionReport = c.PostForm("completion_report")

	if v := c.PostForm("assigned_to"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			errs.Add("assigned_to", "Invalid assignee.")
		} else {
			task.AssignedToId = id
		}
	}
	if v := c.PostForm("due_date"); v != "" {
		due, err := time.Parse("2006-01-02", v)
		if err != nil {
			errs.Add("due_date", "Invalid date.")
		} else {
			task.DueDate = due
		}
	}
	if v := c.PostForm("worked_hours"); v != "" {
		hours, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs.Add("worked_hours", "Worked hours must be a number.")
		} else {
			task.WorkedHours = hours
		}
	}
	return task, errs
}

// bindTaskPatch reads the update form into a partial update. The form posts
// the full field set, so every parsed field lands in the patch; the service
// still owns merge and validation semantics.
func (a *PanelController) bindTaskPatch(c *gin.Context) (*service.TaskPatch, *model.Task, service.FieldErrors) {
	formTask, errs := a.bindTaskForm(c, &model.Task{})

	patch := &service.TaskPatch{
		Title:            &formTask.Title,
		Description:      &formTask.Description,
		Status:           &formTask.Status,
		CompletionReport: &formTask.CompletionReport,
		WorkedHours:      &formTask.WorkedHours,
	}
	if v := c.PostForm("assigned_to"); v != "" {
		patch.AssignedToId = &formTask.AssignedToId
	}
	if v := c.PostForm("due_date"); v != "" {
		patch.DueDate = &v
	}
	return patch, formTask, errs
}

func (a *PanelController) renderTaskForm(c *gin.Context, task *model.Task, errs service.FieldErrors, action string) {
	users, err := a.userService.GetUsers()
	if err != nil {
		logger.Error("list users:", err)
	}
	title := "New task"
	if task.Id != 0 {
		title = "Edit task"
	}
	html(c, "task_form.html", title, gin.H{
		"task":     task,
		"users":    users,
		"errors":   errs,
		"action":   action,
		"statuses": []model.TaskStatus{model.StatusPending, model.StatusInProgress, model.StatusCompleted},
	})
}

// ---- users (SuperAdmin only) ----

func (a *PanelController) userList(c *gin.Context) {
	users, err := a.userService.GetUsers()
	if err != nil {
		logger.Error("list users:", err)
		session.AddFlash(c, "Unable to load users.")
	}
	html(c, "users_list.html", "Users", gin.H{"users": users})
}

func (a *PanelController) userCreateForm(c *gin.Context) {
	roles, _ := a.userService.GetRoles()
	html(c, "user_form.html", "New user", gin.H{"roles": roles})
}

func (a *PanelController) userCreate(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")
	password2 := c.PostForm("password2")
	role := c.PostForm("role")

	if password != password2 {
		session.AddFlash(c, "Passwords don't match.")
		redirect(c, "panel/users/create")
		return
	}

	if _, err := a.userService.CreateUser(username, email, password, role); err != nil {
		session.AddFlash(c, "Unable to create user: "+err.Error())
		redirect(c, "panel/users/create")
		return
	}
	session.AddFlash(c, "User created.")
	redirect(c, "panel/users")
}

func (a *PanelController) userRoleForm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		session.AddFlash(c, "User not found.")
		redirect(c, "panel/users")
		return
	}
	user, err := a.userService.GetUser(id)
	if err != nil {
		session.AddFlash(c, "User not found.")
		redirect(c, "panel/users")
		return
	}
	roles, _ := a.userService.GetRoles()
	held := make(map[string]bool, len(user.Roles))
	for _, r := range user.Roles {
		held[r.Name] = true
	}
	html(c, "user_role_form.html", "Edit role", gin.H{
		"user":  user,
		"roles": roles,
		"held":  held,
	})
}

func (a *PanelController) userRoleUpdate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		session.AddFlash(c, "User not found.")
		redirect(c, "panel/users")
		return
	}
	if _, err := a.userService.UpdateUserRoles(id, c.PostFormArray("roles")); err != nil {
		session.AddFlash(c, "Unable to update role: "+err.Error())
		redirect(c, "panel/users")
		return
	}
	session.AddFlash(c, "Role updated.")
	redirect(c, "panel/users")
}

func (a *PanelController) userDeleteConfirm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		session.AddFlash(c, "User not found.")
		redirect(c, "panel/users")
		return
	}
	user, err := a.userService.GetUser(id)
	if err != nil {
		session.AddFlash(c, "User not found.")
		redirect(c, "panel/users")
		return
	}
	html(c, "user_confirm_delete.html", "Delete user", gin.H{"user": user})
}

func (a *PanelController) userDelete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		session.AddFlash(c, "User not found.")
		redirect(c, "panel/users")
		return
	}
	if err := a.userService.DeleteUser(id); err != nil {
		logger.Error("delete user:", err)
		session.AddFlash(c, "Unable to delete user.")
		redirect(c, "panel/users")
		return
	}
	session.AddFlash(c, "User deleted.")
	redirect(c, "panel/users")
}

func (a *PanelController) adminList(c *gin.Context) {
	admins, err := a.userService.GetUsersByRole(model.RoleAdmin)
	if err != nil {
		logger.Error("list admins:", err)
		session.AddFlash(c, "Unable to load admins.")
	}
	html(c, "admins_list.html", "Admins", gin.H{"admins": admins})
}
