package service

import (
	"os"
	"testing"
	"time"

	"taskpanel/database"
	"taskpanel/database/model"
	"taskpanel/logger"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("TP_LOG_FOLDER", os.TempDir())
	logger.InitLogger(logging.ERROR)
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

func ptr[T any](v T) *T {
	return &v
}

// mustUser creates a user holding the given roles.
func mustUser(t *testing.T, username string, roles ...string) *model.User {
	t.Helper()
	svc := UserService{}
	u, err := svc.CreateUser(username, username+"@example.com", "pass1234", "")
	require.NoError(t, err)
	if len(roles) > 0 {
		u, err = svc.UpdateUserRoles(u.Id, roles)
		require.NoError(t, err)
	}
	return u
}

// mustTask stores a task directly, bypassing create validation so tests can
// seed arbitrary stored state.
func mustTask(t *testing.T, assignee *model.User, status model.TaskStatus, report string, hours float64) *model.Task {
	t.Helper()
	task := &model.Task{
		Title:            "seeded task",
		Description:      "seeded",
		AssignedToId:     assignee.Id,
		DueDate:          time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		Status:           status,
		CompletionReport: report,
		WorkedHours:      hours,
	}
	require.NoError(t, database.GetDB().Create(task).Error)
	return task
}
