package handlers

import (
	"net/http"
	"strconv"
	"time"

	"taskboard/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

type taskCreateRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	DueDate      string `json:"dueDate"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	AssignedUser string `json:"assignedUser"`
}

type taskUpdateRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	DueDate      *string `json:"dueDate"`
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	AssignedUser *string `json:"assignedUser"`
}

// parseDate accepts RFC3339 or a bare calendar date.
func parseDate(value string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// An unparseable due date flows through as the zero value so the
	// service reports it alongside any other field errors.
	dueDate, _ := parseDate(req.DueDate)

	input := services.TaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      dueDate,
		Status:       req.Status,
		Priority:     req.Priority,
		AssignedUser: req.AssignedUser,
	}

	task, err := h.taskService.CreateTask(h.db, caller, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := services.TaskFilter{
		Search:       c.Query("search"),
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		AssignedUser: c.Query("assignedUser"),
		Page:         page,
		PageSize:     limit,
	}

	result, err := h.taskService.ListTasks(h.db, caller, filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Task not found"})
		return
	}

	task, err := h.taskService.GetTaskByID(h.db, caller, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Task not found"})
		return
	}

	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := services.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		AssignedUser: req.AssignedUser,
	}

	if req.DueDate != nil {
		dueDate, ok := parseDate(*req.DueDate)
		if !ok {
			dueDate = time.Time{}
		}
		update.DueDate = &dueDate
	}

	task, err := h.taskService.UpdateTask(h.db, caller, id, update)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Task not found"})
		return
	}

	if err := h.taskService.DeleteTask(h.db, caller, id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Task removed"})
}
