package services

import (
	"errors"
	"strings"
	"time"

	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const DefaultPageSize = 10

// TaskFilter is an immutable per-request filter set. Zero-value fields
// impose no constraint.
type TaskFilter struct {
	Search       string
	Status       string
	Priority     string
	AssignedUser string
	Page         int
	PageSize     int
}

type TaskPage struct {
	Tasks       []models.Task `json:"tasks"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
}

type TaskInput struct {
	Title        string
	Description  string
	DueDate      time.Time
	Status       string
	Priority     string
	AssignedUser string
}

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	Status       *string
	Priority     *string
	AssignedUser *string
}

type TaskService interface {
	CreateTask(db *gorm.DB, caller Identity, input TaskInput) (*models.Task, error)
	GetTaskByID(db *gorm.DB, caller Identity, id uuid.UUID) (*models.Task, error)
	ListTasks(db *gorm.DB, caller Identity, filter TaskFilter) (*TaskPage, error)
	UpdateTask(db *gorm.DB, caller Identity, id uuid.UUID, update TaskUpdate) (*models.Task, error)
	DeleteTask(db *gorm.DB, caller Identity, id uuid.UUID) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

// applyListScope builds the scoped, filtered query. The identity scope is
// applied first and AND-ed with every caller-supplied filter.
func applyListScope(db *gorm.DB, caller Identity, filter TaskFilter) *gorm.DB {
	q := db.Model(&models.Task{})

	if !caller.IsAdmin() {
		q = q.Where("(assigned_user_id = ? OR created_by_id = ?)", caller.UserID, caller.UserID)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}

	if filter.AssignedUser != "" {
		q = q.Where("assigned_user_id = ?", filter.AssignedUser)
	}

	return q
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, caller Identity, filter TaskFilter) (*TaskPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	if filter.AssignedUser != "" {
		if _, err := uuid.FromString(filter.AssignedUser); err != nil {
			verr := &ValidationError{}
			verr.Add("assignedUser", "Valid user ID is required")
			return nil, verr
		}
	}

	var total int64
	if err := applyListScope(db, caller, filter).Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	tasks := []models.Task{}
	err := applyListScope(db, caller, filter).
		Preload("AssignedUser").
		Preload("CreatedBy").
		Order("created_at DESC, id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return &TaskPage{
		Tasks:       tasks,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, caller Identity, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := db.Preload("AssignedUser").Preload("CreatedBy").First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() {
		// The assignee comparison must hold up against an unassigned task.
		assignee := task.AssignedUserID != nil && *task.AssignedUserID == caller.UserID
		if !assignee && task.CreatedByID != caller.UserID {
			return nil, ErrAccessDenied
		}
	}

	return &task, nil
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, caller Identity, input TaskInput) (*models.Task, error) {
	verr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		verr.Add("title", "Title is required")
	}
	if input.DueDate.IsZero() {
		verr.Add("dueDate", "Valid due date is required")
	}

	status := input.Status
	if status == "" {
		status = models.StatusToDo
	} else if !models.ValidStatus(status) {
		verr.Add("status", "Invalid status")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	} else if !models.ValidPriority(priority) {
		verr.Add("priority", "Invalid priority")
	}

	assignedID, err := s.resolveAssignee(db, input.AssignedUser, verr)
	if err != nil {
		return nil, err
	}

	if verr.HasErrors() {
		return nil, verr
	}

	task := models.Task{
		ID:             uuid.Must(uuid.NewV4()),
		Title:          input.Title,
		Description:    input.Description,
		DueDate:        input.DueDate,
		Status:         status,
		Priority:       priority,
		AssignedUserID: assignedID,
		CreatedByID:    caller.UserID,
	}

	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}

	if err := db.Preload("AssignedUser").Preload("CreatedBy").First(&task, "id = ?", task.ID).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, caller Identity, id uuid.UUID, update TaskUpdate) (*models.Task, error) {
	var task models.Task
	err := db.First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() && task.CreatedByID != caller.UserID {
		return nil, ErrAccessDenied
	}

	verr := &ValidationError{}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			verr.Add("title", "Title is required")
		} else {
			task.Title = *update.Title
		}
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.DueDate != nil {
		if update.DueDate.IsZero() {
			verr.Add("dueDate", "Valid due date is required")
		} else {
			task.DueDate = *update.DueDate
		}
	}
	if update.Status != nil {
		if !models.ValidStatus(*update.Status) {
			verr.Add("status", "Invalid status")
		} else {
			task.Status = *update.Status
		}
	}
	if update.Priority != nil {
		if !models.ValidPriority(*update.Priority) {
			verr.Add("priority", "Invalid priority")
		} else {
			task.Priority = *update.Priority
		}
	}
	if update.AssignedUser != nil && *update.AssignedUser != "" {
		assignedID, err := s.resolveAssignee(db, *update.AssignedUser, verr)
		if err != nil {
			return nil, err
		}
		if assignedID != nil {
			task.AssignedUserID = assignedID
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}

	if err := db.Save(&task).Error; err != nil {
		return nil, err
	}

	if err := db.Preload("AssignedUser").Preload("CreatedBy").First(&task, "id = ?", task.ID).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, caller Identity, id uuid.UUID) error {
	var task models.Task
	err := db.First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if !caller.IsAdmin() && task.CreatedByID != caller.UserID {
		return ErrAccessDenied
	}

	return db.Delete(&models.Task{}, "id = ?", id).Error
}

// resolveAssignee validates an assignee reference. An empty value means
// unassigned; an unknown user becomes a field error, not a store error.
func (s *TaskServiceImpl) resolveAssignee(db *gorm.DB, ref string, verr *ValidationError) (*uuid.UUID, error) {
	if ref == "" {
		return nil, nil
	}

	uid, err := uuid.FromString(ref)
	if err != nil {
		verr.Add("assignedUser", "Valid user ID is required")
		return nil, nil
	}

	var user models.User
	err = db.First(&user, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		verr.Add("assignedUser", "Assigned user does not exist")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &uid, nil
}
