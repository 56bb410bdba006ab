package service

import (
	"errors"
	"strings"

	"taskpanel/database"
	"taskpanel/database/model"
	"taskpanel/logger"
	"taskpanel/util/crypto"

	"gorm.io/gorm"
)

type UserService struct{}

// CheckUser verifies username and password and returns the user with roles
// preloaded, or nil. Callers get no detail about which part failed.
func (s *UserService) CheckUser(username string, password string) *model.User {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Preload("Roles").
		Where("username = ?", username).
		First(user).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}

	if !user.IsActive {
		return nil
	}
	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil
	}
	return user
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Preload("Roles").First(user, id).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUsers() ([]model.User, error) {
	db := database.GetDB()
	var users []model.User
	err := db.Preload("Roles").Order("id ASC").Find(&users).Error
	return users, err
}

// GetUsersByRole returns all users holding the named role.
func (s *UserService) GetUsersByRole(roleName string) ([]model.User, error) {
	db := database.GetDB()
	var users []model.User
	err := db.Preload("Roles").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", roleName).
		Order("users.id ASC").
		Find(&users).
		Error
	return users, err
}

func (s *UserService) GetRoles() ([]model.Role, error) {
	db := database.GetDB()
	var roles []model.Role
	err := db.Order("id ASC").Find(&roles).Error
	return roles, err
}

// CreateUser creates a user with a bcrypt-hashed password and an optional
// initial role.
func (s *UserService) CreateUser(username, email, password, roleName string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}

	db := database.GetDB()
	user := &model.User{
		Username: username,
		Email:    email,
		Password: hash,
		IsActive: true,
	}
	if roleName != "" {
		var role model.Role
		if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
			return nil, errors.New("unknown role: " + roleName)
		}
		user.Roles = []model.Role{role}
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserRoles replaces the user's role memberships with the named roles.
func (s *UserService) UpdateUserRoles(id int, roleNames []string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	if err := db.Preload("Roles").First(user, id).Error; err != nil {
		return nil, err
	}

	roles := make([]model.Role, 0, len(roleNames))
	for _, name := range roleNames {
		var role model.Role
		if err := db.Where("name = ?", name).First(&role).Error; err != nil {
			return nil, errors.New("unknown role: " + name)
		}
		roles = append(roles, role)
	}

	if err := db.Model(user).Association("Roles").Replace(roles); err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

// DeleteUser removes the user, their role memberships and every task assigned
// to them, in one transaction so no task is left with a dangling assignee.
func (s *UserService) DeleteUser(id int) error {
	db := database.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		user := &model.User{}
		if err := tx.First(user, id).Error; err != nil {
			return err
		}
		if err := tx.Where("assigned_to_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Model(user).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}

func (s *UserService) GetFirstUser() (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).Preload("Roles").First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateFirstUser resets the bootstrap account's credentials from the CLI.
func (s *UserService) UpdateFirstUser(username string, password string) error {
	if username == "" {
		return errors.New("username can not be empty")
	} else if password == "" {
		return errors.New("password can not be empty")
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}

	db := database.GetDB()
	user := &model.User{}
	err = db.Model(model.User{}).First(user).Error
	if err != nil {
		return err
	}
	return db.Model(model.User{}).
		Where("id = ?", user.Id).
		Updates(map[string]any{"username": username, "password_hash": hash}).
		Error
}
