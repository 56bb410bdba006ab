package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"taskpanel/database"
	"taskpanel/database/model"
)

// ErrPermissionDenied is returned when the acting user fails a policy check.
// Controllers translate it to 403 for the API and redirect+flash for the panel.
var ErrPermissionDenied = errors.New("permission denied")

const dueDateLayout = "2006-01-02"

// FieldErrors collects validation messages per field. Every offending field
// is reported; validation never stops at the first failure.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(e))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], "; "))
	}
	return strings.Join(parts, ", ")
}

// TaskPatch is a partial update applied over the stored task. Nil fields are
// left untouched.
type TaskPatch struct {
	Title            *string           `json:"title"`
	Description      *string           `json:"description"`
	AssignedToId     *int              `json:"assigned_to"`
	DueDate          *string           `json:"due_date"`
	Status           *model.TaskStatus `json:"status"`
	CompletionReport *string           `json:"completion_report"`
	WorkedHours      *float64          `json:"worked_hours"`
}

// CheckCompletion enforces the completion invariant on a merged task state:
// a completed task must carry a non-empty report and positive worked hours.
// Any other status places no constraint on either field.
func CheckCompletion(t *model.Task) FieldErrors {
	errs := FieldErrors{}
	if t.Status != model.StatusCompleted {
		return errs
	}
	if strings.TrimSpace(t.CompletionReport) == "" {
		errs.Add("completion_report", "A completion report is required to complete a task.")
	}
	if t.WorkedHours <= 0 {
		errs.Add("worked_hours", "Worked hours must be a positive number.")
	}
	return errs
}

type TaskService struct{}

func (s *TaskService) GetTask(id int) (*model.Task, error) {
	db := database.GetDB()
	task := &model.Task{}
	err := db.Preload("AssignedTo").Preload("AssignedTo.Roles").First(task, id).Error
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListForAssignee returns the tasks assigned to the given user. An empty
// result is a valid, successful response.
func (s *TaskService) ListForAssignee(userId int) ([]model.Task, error) {
	db := database.GetDB()
	tasks := make([]model.Task, 0)
	err := db.Preload("AssignedTo").
		Where("assigned_to_id = ?", userId).
		Order("id ASC").
		Find(&tasks).
		Error
	return tasks, err
}

// ListScoped returns the panel task list for the acting admin. SuperAdmin
// sees every task; Admin sees only tasks assigned to User-role holders.
func (s *TaskService) ListScoped(actor *model.User) ([]model.Task, error) {
	db := database.GetDB()
	tasks := make([]model.Task, 0)

	q := db.Preload("AssignedTo").Preload("AssignedTo.Roles").Order("tasks.id ASC")
	if !IsSuperAdmin(actor) {
		sub := db.Table("user_roles").
			Select("user_roles.user_id").
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Where("roles.name = ?", model.RoleUser)
		q = q.Where("tasks.assigned_to_id IN (?)", sub)
	}
	err := q.Find(&tasks).Error
	return tasks, err
}

// CreateTask validates and stores a new task. The same completion invariant
// applies when a task is created directly in completed status.
func (s *TaskService) CreateTask(task *model.Task) error {
	db := database.GetDB()

	errs := FieldErrors{}
	if strings.TrimSpace(task.Title) == "" {
		errs.Add("title", "Title is required.")
	}
	if task.AssignedToId == 0 {
		errs.Add("assigned_to", "An assignee is required.")
	} else {
		var count int64
		if err := db.Model(&model.User{}).Where("id = ?", task.AssignedToId).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			errs.Add("assigned_to", "Assignee does not exist.")
		}
	}
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	if !task.Status.IsValid() {
		errs.Add("status", "Unknown status.")
	}
	for field, msgs := range CheckCompletion(task) {
		errs[field] = append(errs[field], msgs...)
	}
	if len(errs) > 0 {
		return errs
	}

	return db.Create(task).Error
}

// UpdateTask applies a partial update on behalf of actor: authorize, merge
// the patch onto the stored snapshot, validate the merged result, persist.
// On any failure the stored state is left untouched. The assignee is
// immutable once set, independent of the completion check.
func (s *TaskService) UpdateTask(actor *model.User, id int, patch *TaskPatch) (*model.Task, error) {
	db := database.GetDB()

	task := &model.Task{}
	if err := db.Preload("AssignedTo").First(task, id).Error; err != nil {
		return nil, err
	}

	if !CanUpdateTask(actor, task) {
		return nil, ErrPermissionDenied
	}

	errs := FieldErrors{}
	if patch.AssignedToId != nil && *patch.AssignedToId != task.AssignedToId {
		errs.Add("assigned_to", "Cannot change assignee.")
	}

	merged := *task
	if patch.Title != nil {
		merged.Title = *patch.Title
		if strings.TrimSpace(merged.Title) == "" {
			errs.Add("title", "Title is required.")
		}
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.DueDate != nil {
		due, err := parseDueDate(*patch.DueDate)
		if err != nil {
			errs.Add("due_date", "Invalid date.")
		} else {
			merged.DueDate = due
		}
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
		if !merged.Status.IsValid() {
			errs.Add("status", "Unknown status.")
		}
	}
	if patch.CompletionReport != nil {
		merged.CompletionReport = *patch.CompletionReport
	}
	if patch.WorkedHours != nil {
		merged.WorkedHours = *patch.WorkedHours
	}

	// The completion invariant holds on the merged result, not on the
	// incoming fields alone.
	if merged.Status.IsValid() {
		for field, msgs := range CheckCompletion(&merged) {
			errs[field] = append(errs[field], msgs...)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	err := db.Model(&model.Task{Id: task.Id}).
		Select("title", "description", "due_date", "status", "completion_report", "worked_hours").
		Updates(map[string]any{
			"title":             merged.Title,
			"description":       merged.Description,
			"due_date":          merged.DueDate,
			"status":            merged.Status,
			"completion_report": merged.CompletionReport,
			"worked_hours":      merged.WorkedHours,
		}).
		Error
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(dueDateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
