// Package entity defines response structures used by the web layer.
package entity

import (
	"taskpanel/database/model"
)

// APIError is the standard error envelope for JSON API failures.
type APIError struct {
	Error string `json:"error"`
}

// TokenPair is returned by a successful API login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessToken is returned by a successful token refresh.
type AccessToken struct {
	Access string `json:"access"`
}

// TaskReport is the completion report view of a finished task.
type TaskReport struct {
	Id               int              `json:"id"`
	Title            string           `json:"title"`
	Status           model.TaskStatus `json:"status"`
	CompletionReport string           `json:"completion_report"`
	WorkedHours      float64          `json:"worked_hours"`
}

// NewTaskReport builds the report view for a completed task.
func NewTaskReport(t *model.Task) TaskReport {
	return TaskReport{
		Id:               t.Id,
		Title:            t.Title,
		Status:           t.Status,
		CompletionReport: t.CompletionReport,
		WorkedHours:      t.WorkedHours,
	}
}
