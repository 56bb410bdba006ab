package model

import (
	"time"
)

// Canonical role names. Seeded once at bring-up; authorization treats Admin
// and SuperAdmin as equally privileged except for user and role management.
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleUser       = "User"
)

// CanonicalRoles lists every role the system knows about, in seeding order.
var CanonicalRoles = []string{RoleSuperAdmin, RoleAdmin, RoleUser}

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// IsValid reports whether s is one of the three known task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type User struct {
	Id       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email"`
	Password string `json:"-" gorm:"column:password_hash;not null"`
	IsActive bool   `json:"-" gorm:"default:true"`
	Roles    []Role `json:"-" gorm:"many2many:user_roles;"`
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of all roles the user holds.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

type Role struct {
	Id   int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

type Task struct {
	Id               int        `json:"id" gorm:"primaryKey;autoIncrement"`
	Title            string     `json:"title" gorm:"not null"`
	Description      string     `json:"description"`
	AssignedToId     int        `json:"-" gorm:"not null;index"`
	AssignedTo       *User      `json:"assigned_to" gorm:"foreignKey:AssignedToId"`
	DueDate          time.Time  `json:"due_date"`
	Status           TaskStatus `json:"status" gorm:"type:varchar(20);not null;default:pending"`
	CompletionReport string     `json:"completion_report"`
	WorkedHours      float64    `json:"worked_hours"`
}
