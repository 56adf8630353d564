package services

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// ReportFilter scopes the summary. User is only honored for admin
// callers; StartDate/EndDate bound the due date independently.
type ReportFilter struct {
	Status    string
	User      string
	StartDate *time.Time
	EndDate   *time.Time
}

// Summary is a derived aggregate, computed on demand and never stored.
// The grouped maps hold only keys actually observed; statusOrder and
// userOrder remember first-seen order for the CSV rendering.
type Summary struct {
	TotalTasks    int            `json:"totalTasks"`
	TasksByStatus map[string]int `json:"tasksByStatus"`
	TasksByUser   map[string]int `json:"tasksByUser"`
	TasksOverdue  int            `json:"tasksOverdue"`

	statusOrder []string
	userOrder   []string
}

const UnassignedLabel = "Unassigned"

type ReportService interface {
	Summarize(db *gorm.DB, caller Identity, filter ReportFilter) (*Summary, error)
}

type ReportServiceImpl struct{}

func NewReportService() *ReportServiceImpl {
	return &ReportServiceImpl{}
}

func (s *ReportServiceImpl) Summarize(db *gorm.DB, caller Identity, filter ReportFilter) (*Summary, error) {
	q := db.Model(&models.Task{})

	// Reporting scope is narrower than the list scope: non-admins see
	// only tasks they created, not tasks merely assigned to them.
	if !caller.IsAdmin() {
		q = q.Where("created_by_id = ?", caller.UserID)
	}

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if filter.User != "" && caller.IsAdmin() {
		uid, err := uuid.FromString(filter.User)
		if err != nil {
			verr := &ValidationError{}
			verr.Add("user", "Valid user ID is required")
			return nil, verr
		}
		q = q.Where("assigned_user_id = ?", uid)
	}

	if filter.StartDate != nil {
		q = q.Where("due_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("due_date <= ?", *filter.EndDate)
	}

	var tasks []models.Task
	err := q.Preload("AssignedUser").
		Order("created_at ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summary := &Summary{
		TotalTasks:    len(tasks),
		TasksByStatus: make(map[string]int),
		TasksByUser:   make(map[string]int),
	}

	for _, task := range tasks {
		if _, seen := summary.TasksByStatus[task.Status]; !seen {
			summary.statusOrder = append(summary.statusOrder, task.Status)
		}
		summary.TasksByStatus[task.Status]++

		name := UnassignedLabel
		if task.AssignedUser != nil {
			name = task.AssignedUser.Name
		}
		if _, seen := summary.TasksByUser[name]; !seen {
			summary.userOrder = append(summary.userOrder, name)
		}
		summary.TasksByUser[name]++

		if task.DueDate.Before(now) {
			summary.TasksOverdue++
		}
	}

	return summary, nil
}

// WriteCSV renders the summary as a flat Metric/Value table with a fixed
// row order: totals first, then status rows, then assignee rows, the
// grouped rows in the order their keys were first observed.
func (s *Summary) WriteCSV(w io.Writer) error {
	records := [][]string{
		{"Metric", "Value"},
		{"Total Tasks", strconv.Itoa(s.TotalTasks)},
		{"Tasks Overdue", strconv.Itoa(s.TasksOverdue)},
	}

	for _, status := range s.statusOrder {
		records = append(records, []string{"Tasks - " + status, strconv.Itoa(s.TasksByStatus[status])})
	}
	for _, name := range s.userOrder {
		records = append(records, []string{"Tasks - Assigned to " + name, strconv.Itoa(s.TasksByUser[name])})
	}

	cw := csv.NewWriter(w)
	return cw.WriteAll(records)
}
