package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"taskpanel/database"
	"taskpanel/database/model"
	"taskpanel/logger"
	"taskpanel/web/entity"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"taskpanel/web/service"
)

func TestMain(m *testing.M) {
	os.Setenv("TP_LOG_FOLDER", os.TempDir())
	logger.InitLogger(logging.ERROR)
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setup(t *testing.T) {
	t.Helper()
	dbPath := "test.db"
	os.Remove(dbPath)
	require.NoError(t, database.InitDB(dbPath))
	t.Cleanup(func() {
		database.CloseDB()
		os.Remove(dbPath)
	})
}

func newAPIRouter(t *testing.T) *gin.Engine {
	t.Helper()
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", "/")
	})
	NewAPIController(engine.Group("/"))
	return engine
}

func mustUser(t *testing.T, username string, roles ...string) *model.User {
	t.Helper()
	svc := service.UserService{}
	u, err := svc.CreateUser(username, username+"@example.com", "pass1234", "")
	require.NoError(t, err)
	if len(roles) > 0 {
		u, err = svc.UpdateUserRoles(u.Id, roles)
		require.NoError(t, err)
	}
	return u
}

func mustTask(t *testing.T, assignee *model.User, status model.TaskStatus, report string, hours float64) *model.Task {
	t.Helper()
	task := &model.Task{
		Title:            "seeded task",
		AssignedToId:     assignee.Id,
		DueDate:          time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		Status:           status,
		CompletionReport: report,
		WorkedHours:      hours,
	}
	require.NoError(t, database.GetDB().Create(task).Error)
	return task
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// loginToken obtains an access/refresh pair through the login endpoint.
func loginToken(t *testing.T, router *gin.Engine, username string) entity.TokenPair {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": "pass1234",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var pair entity.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	return pair
}

func TestAPILogin(t *testing.T) {
	setup(t)
	router := newAPIRouter(t)
	mustUser(t, "worker", model.RoleUser)
	mustUser(t, "roleless")

	t.Run("valid credentials return a token pair", func(t *testing.T) {
		pair := loginToken(t, router, "worker")
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
	})

	t.Run("a user with no roles can still log in to the API", func(t *testing.T) {
		pair := loginToken(t, router, "roleless")
		assert.NotEmpty(t, pair.Access)
	})

	t.Run("bad credentials get a generic 401", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
			"username": "worker",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		// An unknown username produces the identical body.
		w2 := doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
			"username": "ghost",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w2.Code)
		assert.Equal(t, w.Body.String(), w2.Body.String())
	})
}

func TestAPIRefresh(t *testing.T) {
	setup(t)
	router := newAPIRouter(t)
	mustUser(t, "worker", model.RoleUser)
	pair := loginToken(t, router, "worker")

	w := doJSON(router, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code)
	var tok entity.AccessToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	assert.NotEmpty(t, tok.Access)

	// An access token is not a refresh token.
	w = doJSON(router, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh": pair.Access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIListTasks(t *testing.T) {
	setup(t)
	router := newAPIRouter(t)
	worker := mustUser(t, "worker", model.RoleUser)
	other := mustUser(t, "other", model.RoleUser)
	mine := mustTask(t, worker, model.StatusPending, "", 0)
	mustTask(t, other, model.StatusPending, "", 0)

	t.Run("unauthenticated is 401", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/tasks", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("caller sees only their assigned tasks", func(t *testing.T) {
		pair := loginToken(t, router, "worker")
		w := doJSON(router, http.MethodGet, "/api/tasks", pair.Access, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var tasks []model.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
		require.Len(t, tasks, 1)
		assert.Equal(t, mine.Id, tasks[0].Id)
	})

	t.Run("no assignments is an empty 200", func(t *testing.T) {
		mustUser(t, "idle", model.RoleUser)
		pair := loginToken(t, router, "idle")
		w := doJSON(router, http.MethodGet, "/api/tasks", pair.Access, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

func TestAPIUpdateTask(t *testing.T) {
	setup(t)
	router := newAPIRouter(t)
	worker := mustUser(t, "worker", model.RoleUser)
	stranger := mustUser(t, "stranger", model.RoleUser)
	task := mustTask(t, worker, model.StatusPending, "", 0)

	workerTok := loginToken(t, router, "worker").Access
	strangerTok := loginToken(t, router, "stranger").Access
	path := fmt.Sprintf("/api/tasks/%d", task.Id)

	t.Run("completing without report and hours is 400 with both fields", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, path, workerTok, gin.H{"status": "completed"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		var fieldErrs map[string][]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fieldErrs))
		assert.Contains(t, fieldErrs, "completion_report")
		assert.Contains(t, fieldErrs, "worked_hours")
	})

	t.Run("changing the assignee is rejected", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, path, workerTok, gin.H{
			"assigned_to": stranger.Id,
			"status":      "in_progress",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		var fieldErrs map[string][]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fieldErrs))
		assert.Contains(t, fieldErrs, "assigned_to")
	})

	t.Run("non-assignee non-admin is 403", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, path, strangerTok, gin.H{"status": "in_progress"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown task is 404", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, "/api/tasks/9999", workerTok, gin.H{"status": "in_progress"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("valid completion is 200 with the merged task", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, path, workerTok, gin.H{
			"status":            "completed",
			"completion_report": "all done",
			"worked_hours":      2.5,
		})
		require.Equal(t, http.StatusOK, w.Code)
		var updated model.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, model.StatusCompleted, updated.Status)
		assert.Equal(t, "all done", updated.CompletionReport)
	})
}

func TestAPITaskReport(t *testing.T) {
	setup(t)
	router := newAPIRouter(t)
	worker := mustUser(t, "worker", model.RoleUser)
	mustUser(t, "boss", model.RoleAdmin)
	mustUser(t, "root", model.RoleSuperAdmin)
	pending := mustTask(t, worker, model.StatusPending, "", 0)
	completed := mustTask(t, worker, model.StatusCompleted, "all done", 2)

	workerTok := loginToken(t, router, "worker").Access
	adminTok := loginToken(t, router, "boss").Access
	rootTok := loginToken(t, router, "root").Access

	t.Run("non-completed task is 404 for every role", func(t *testing.T) {
		path := fmt.Sprintf("/api/tasks/%d/report", pending.Id)
		for _, tok := range []string{workerTok, adminTok, rootTok} {
			w := doJSON(router, http.MethodGet, path, tok, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
	})

	t.Run("missing task is 404", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/tasks/9999/report", adminTok, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("completed task report is admin-only", func(t *testing.T) {
		path := fmt.Sprintf("/api/tasks/%d/report", completed.Id)

		// The owning non-admin user is 403.
		w := doJSON(router, http.MethodGet, path, workerTok, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		for _, tok := range []string{adminTok, rootTok} {
			w := doJSON(router, http.MethodGet, path, tok, nil)
			require.Equal(t, http.StatusOK, w.Code)
			var report entity.TaskReport
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
			assert.Equal(t, "all done", report.CompletionReport)
			assert.Equal(t, 2.0, report.WorkedHours)
		}
	})
}

// newPanelRouter wires just the login controller with cookie sessions, enough
// to exercise panel login decisions without rendering templates.
func newPanelRouter(t *testing.T) *gin.Engine {
	t.Helper()
	engine := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	engine.Use(sessions.Sessions("taskpanel", store))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", "/")
	})
	g := engine.Group("/")
	a := &IndexController{}
	g.POST("/login", a.login)
	return engine
}

func doForm(router *gin.Engine, path string, form string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPanelLoginRequiresPanelRole(t *testing.T) {
	setup(t)
	router := newPanelRouter(t)
	mustUser(t, "worker", model.RoleUser)
	mustUser(t, "roleless")
	mustUser(t, "boss", model.RoleAdmin)

	// Valid API credentials without a panel role bounce back to the login
	// screen, indistinguishable from a bad password.
	for _, username := range []string{"worker", "roleless"} {
		w := doForm(router, "/login", "username="+username+"&password=pass1234")
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	}

	w := doForm(router, "/login", "username=boss&password=wrong")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// An admin lands in the panel.
	w = doForm(router, "/login", "username=boss&password=pass1234")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/panel/", w.Header().Get("Location"))
}
