package service

import (
	"testing"

	"taskpanel/database"
	"taskpanel/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleSeeding(t *testing.T) {
	setup(t)

	var roles []model.Role
	require.NoError(t, database.GetDB().Order("id ASC").Find(&roles).Error)
	require.Len(t, roles, 3)
	names := []string{roles[0].Name, roles[1].Name, roles[2].Name}
	assert.Equal(t, []string{model.RoleSuperAdmin, model.RoleAdmin, model.RoleUser}, names)

	// Bring-up is idempotent: running it again adds nothing.
	require.NoError(t, database.InitDB("test.db"))
	var count int64
	require.NoError(t, database.GetDB().Model(&model.Role{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestBootstrapUser(t *testing.T) {
	setup(t)
	svc := UserService{}

	user, err := svc.GetFirstUser()
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.HasRole(model.RoleSuperAdmin))

	// Credentials are stored hashed, not as the raw password.
	assert.NotEqual(t, "admin", user.Password)
	assert.NotNil(t, svc.CheckUser("admin", "admin"))
}

func TestCheckUser(t *testing.T) {
	setup(t)
	svc := UserService{}
	mustUser(t, "worker", model.RoleUser)

	checked := svc.CheckUser("worker", "pass1234")
	require.NotNil(t, checked)
	assert.True(t, checked.HasRole(model.RoleUser))

	assert.Nil(t, svc.CheckUser("worker", "wrong"))
	assert.Nil(t, svc.CheckUser("ghost", "pass1234"))
}

func TestCreateUser(t *testing.T) {
	setup(t)
	svc := UserService{}

	u, err := svc.CreateUser("newbie", "newbie@example.com", "secret99", model.RoleUser)
	require.NoError(t, err)
	assert.True(t, u.HasRole(model.RoleUser))

	_, err = svc.CreateUser("", "", "secret99", "")
	assert.Error(t, err)
	_, err = svc.CreateUser("nopass", "", "", "")
	assert.Error(t, err)
	_, err = svc.CreateUser("badrole", "", "secret99", "Overlord")
	assert.Error(t, err)

	// Username is unique.
	_, err = svc.CreateUser("newbie", "", "secret99", "")
	assert.Error(t, err)
}

func TestUpdateUserRoles(t *testing.T) {
	setup(t)
	svc := UserService{}
	u := mustUser(t, "worker", model.RoleUser)

	updated, err := svc.UpdateUserRoles(u.Id, []string{model.RoleAdmin, model.RoleSuperAdmin})
	require.NoError(t, err)
	assert.False(t, updated.HasRole(model.RoleUser))
	assert.True(t, updated.HasRole(model.RoleAdmin))
	assert.True(t, updated.HasRole(model.RoleSuperAdmin))

	// Clearing all roles is allowed; such a user can still use the API.
	updated, err = svc.UpdateUserRoles(u.Id, nil)
	require.NoError(t, err)
	assert.Empty(t, updated.Roles)

	_, err = svc.UpdateUserRoles(u.Id, []string{"Overlord"})
	assert.Error(t, err)
}

func TestDeleteUserCascades(t *testing.T) {
	setup(t)
	svc := UserService{}
	taskSvc := TaskService{}

	worker := mustUser(t, "worker", model.RoleUser)
	keeper := mustUser(t, "keeper", model.RoleUser)
	mustTask(t, worker, model.StatusPending, "", 0)
	mustTask(t, worker, model.StatusCompleted, "done", 1)
	kept := mustTask(t, keeper, model.StatusPending, "", 0)

	require.NoError(t, svc.DeleteUser(worker.Id))

	_, err := svc.GetUser(worker.Id)
	assert.True(t, database.IsNotFound(err))

	// Their tasks are gone, nobody else's are touched.
	tasks, err := taskSvc.ListForAssignee(worker.Id)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	tasks, err = taskSvc.ListForAssignee(keeper.Id)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, kept.Id, tasks[0].Id)

	// Role membership rows are cleaned up as well.
	var memberships int64
	require.NoError(t, database.GetDB().Table("user_roles").Where("user_id = ?", worker.Id).Count(&memberships).Error)
	assert.EqualValues(t, 0, memberships)

	// The role list no longer includes the deleted user.
	users, err := svc.GetUsersByRole(model.RoleUser)
	require.NoError(t, err)
	for _, u := range users {
		assert.NotEqual(t, worker.Id, u.Id)
	}
}

func TestGetUsersByRole(t *testing.T) {
	setup(t)
	svc := UserService{}

	mustUser(t, "worker", model.RoleUser)
	admin := mustUser(t, "boss", model.RoleAdmin)
	mustUser(t, "root", model.RoleSuperAdmin)

	admins, err := svc.GetUsersByRole(model.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, admin.Id, admins[0].Id)
}
