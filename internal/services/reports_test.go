package services_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"
)

func TestSummarize_NonAdminCountsOnlyCreatedTasks(t *testing.T) {
	db := setupDB(t)
	svc := services.NewReportService()

	alice := seedUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := seedUser(t, db, "Bob", "bob@example.com", models.RoleUser)

	seedTask(t, db, models.Task{Title: "created by alice", CreatedByID: alice.ID})
	// Assigned to alice but created by bob. It shows up in her task
	// list, not in her report.
	seedTask(t, db, models.Task{Title: "assigned to alice", CreatedByID: bob.ID, AssignedUserID: &alice.ID})

	summary, err := svc.Summarize(db, asUser(alice), services.ReportFilter{})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.TotalTasks != 1 {
		t.Errorf("expected creator-only scope to count 1 task, got %d", summary.TotalTasks)
	}
}

func TestSummarize_AdminSeesEverything(t *testing.T) {
	db := setupDB(t)
	svc := services.NewReportService()

	alice := seedUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := seedUser(t, db, "Bob", "bob@example.com", models.RoleUser)
	admin := seedUser(t, db, "Root", "root@example.com", models.RoleAdmin)

	seedTask(t, db, models.Task{Title: "a", CreatedByID: alice.ID})
	seedTask(t, db, models.Task{Title: "b", CreatedByID: bob.ID})

	summary, err := svc.Summarize(db, asUser(admin), services.ReportFilter{})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.TotalTasks != 2 {
		t.Errorf("expected 2 tasks for admin, got %d", summary.TotalTasks)
	}
}

func TestSummarize_GroupsByStatusAndAssignee(t *testing.T) {
	db := setupDB(t)
	svc := services.NewReportService()

	admin := seedUser(t, db, "Root", "root@example.com", models.RoleAdmin)
	bob := seedUser(t, db, "Bob", "bob@example.com", models.RoleUser)

	future := time.Now().Add(48 * time.Hour)
	seedTask(t, db, models.Task{Title: "a", Status: models.StatusToDo, CreatedByID: admin.ID, AssignedUserID: &bob.ID, DueDate: future})
	seedTask(t, db, models.Task{Title: "b", Status: models.StatusToDo, CreatedByID: admin.ID, DueDate: future})
	seedTask(t, db, models.Task{Title: "c", Status: models.StatusCompleted, CreatedByID: admin.ID, AssignedUserID: &bob.ID, DueDate: future})

	summary, err := svc.Summarize(db, asUser(admin), services.ReportFilter{})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.TotalTasks != 3 {
		t.Errorf("expected 3 tasks, got %d", summary.TotalTasks)
	}
	if summary.TasksByStatus[models.StatusToDo] != 2 || summary.TasksByStatus[models.StatusCompleted] != 1 {
		t.Errorf("unexpected status grouping: %+v", summary.TasksByStatus)
	}
	if len(summary.TasksByStatus) != 2 {
		t.Errorf("expected only observed statuses, got %+v", summary.TasksByStatus)
	}
	if summary.TasksByUser["Bob"] != 2 || summary.TasksByUser[services.UnassignedLabel] != 1 {
		t.Errorf("unexpected assignee grouping: %+v", summary.TasksByUser)
	}
	if summary.TasksOverdue != 0 {
		t.Errorf("expected no overdue tasks, got %d", summary.TasksOverdue)
	}
}

func TestSummarize_OverdueComparesDueDateToNow(t *testing.T) {
	db := setupDB(t)
	svc := services.NewReportService()
	admin := seedUser(t, db, "Root", "root@example.com", models.RoleAdmin)

	seedTask(t, db, models.Task{Title: "late", CreatedByID: admin.ID, DueDate: time.Now().Add(-24 * time.Hour)})
	seedTask(t, db, models.Task{Title: "on time", CreatedByID: admin.ID, DueDate: time.Now().Add(24 * time.Hour)})

	summary, err := svc.Summarize(db, asUser(admin), services.ReportFilter{})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.TasksOverdue != 1 {
		t.Errorf("expected 1 overdue task, got %d", summary.TasksOverdue)
	}
}

func TestSummarize_DueDateRange(t *testing.T) {
	db := setupDB(t)
	svc := services.NewReportService()
	admin := seedUser(t, db, "Root", "root@example.com", models.RoleAdmin)

	day := func(offset int) time.Time {
		return time.Date(2026, 3, 1+offset, 12, 0, 0, 0, time.UTC)
	}
	seedTask(t, db, models.Task{Title: "early", CreatedByID: admin.ID, DueDate: day(0)})
	seedTask(t, db, models.Task{Title: "middle", CreatedByID: admin.ID, DueDate: day(5)})
	seedTask(t, db, models.Task{Title: "late", CreatedByID: admin.ID, DueDate: day(10)})

	start := day(2)
	end := day(7)

	tests := []struct {
		name   string
		filter services.ReportFilter
		want   int
	}{
		{"start only", services.ReportFilter{StartDate: &start}, 2},
		{"end only", services.ReportFilter{EndDate: &end}, 2},
		{"both", services.ReportFilter{StartDate: &start, EndDate: &end}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := svc.Summarize(db, asUser(admin), tt.filter)
			if err != nil {
				t.Fatalf("Summarize failed: %v", err)
			}
			if summary.TotalTasks != tt.want {
				t.Errorf("expected %d tasks, got %d", tt.want, summary.TotalTasks)
			}
		})
	}
}

func TestSummarize_StatusFilter(t *testing.T) {
	db := setupDB(t)
	svc := services.NewReportService()
	admin := seedUser(t, db, "Root", "root@example.com", models.RoleAdmin)

	seedTask(t, db, models.Task{Title: "a", Status: models.StatusToDo, CreatedByID: admin.ID})
	seedTask(t, db, models.Task{Title: "b", Status: models.StatusCompleted, CreatedByID: admin.ID})

	summary, err := svc.Summarize(db, asUser(admin), services.ReportFilter{Status: models.StatusCompleted})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.TotalTasks != 1 {
		t.Errorf("expected 1 task, got %d", summary.TotalTasks)
	}
	if _, ok := summary.TasksByStatus[models.StatusToDo]; ok {
		t.Errorf("filtered-out status should not appear: %+v", summary.TasksByStatus)
	}
}

func TestSummarize_UserFilterAdminOnly(t *testing.T) {
	db := setupDB(t)
	svc := services.NewReportService()

	alice := seedUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := seedUser(t, db, "Bob", "bob@example.com", models.RoleUser)
	admin := seedUser(t, db, "Root", "root@example.com", models.RoleAdmin)

	seedTask(t, db, models.Task{Title: "for bob", CreatedByID: admin.ID, AssignedUserID: &bob.ID})
	seedTask(t, db, models.Task{Title: "unassigned", CreatedByID: admin.ID})
	seedTask(t, db, models.Task{Title: "alice own", CreatedByID: alice.ID})

	adminSummary, err := svc.Summarize(db, asUser(admin), services.ReportFilter{User: bob.ID.String()})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if adminSummary.TotalTasks != 1 {
		t.Errorf("expected admin user filter to match 1 task, got %d", adminSummary.TotalTasks)
	}

	// A non-admin passing the filter still gets their own report.
	aliceSummary, err := svc.Summarize(db, asUser(alice), services.ReportFilter{User: bob.ID.String()})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if aliceSummary.TotalTasks != 1 {
		t.Errorf("expected user filter ignored for non-admin, got %d tasks", aliceSummary.TotalTasks)
	}
}

func TestSummarize_InvalidUserFilterRejected(t *testing.T) {
	db := setupDB(t)
	svc := services.NewReportService()
	admin := seedUser(t, db, "Root", "root@example.com", models.RoleAdmin)

	_, err := svc.Summarize(db, asUser(admin), services.ReportFilter{User: "not-a-uuid"})

	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSummary_WriteCSVRowOrder(t *testing.T) {
	db := setupDB(t)
	svc := services.NewReportService()

	admin := seedUser(t, db, "Root", "root@example.com", models.RoleAdmin)
	bob := seedUser(t, db, "Bob", "bob@example.com", models.RoleUser)

	base := time.Now().Add(-time.Hour)
	future := time.Now().Add(48 * time.Hour)
	seedTask(t, db, models.Task{Title: "a", Status: models.StatusInProgress, CreatedByID: admin.ID, AssignedUserID: &bob.ID, DueDate: time.Now().Add(-24 * time.Hour), CreatedAt: base})
	seedTask(t, db, models.Task{Title: "b", Status: models.StatusToDo, CreatedByID: admin.ID, DueDate: future, CreatedAt: base.Add(time.Minute)})
	seedTask(t, db, models.Task{Title: "c", Status: models.StatusInProgress, CreatedByID: admin.ID, AssignedUserID: &bob.ID, DueDate: future, CreatedAt: base.Add(2 * time.Minute)})

	summary, err := svc.Summarize(db, asUser(admin), services.ReportFilter{})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	var buf bytes.Buffer
	if err := summary.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"Metric,Value",
		"Total Tasks,3",
		"Tasks Overdue,1",
		"Tasks - In Progress,2",
		"Tasks - To Do,1",
		"Tasks - Assigned to Bob,2",
		"Tasks - Assigned to Unassigned,1",
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d csv lines, got %d:\n%s", len(want), len(got), buf.String())
	}
	for i := range want {
		if strings.TrimRight(got[i], "\r") != want[i] {
			t.Errorf("csv line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSummarize_EmptyReport(t *testing.T) {
	db := setupDB(t)
	svc := services.NewReportService()
	alice := seedUser(t, db, "Alice", "alice@example.com", models.RoleUser)

	summary, err := svc.Summarize(db, asUser(alice), services.ReportFilter{})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.TotalTasks != 0 || summary.TasksOverdue != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
	if len(summary.TasksByStatus) != 0 || len(summary.TasksByUser) != 0 {
		t.Errorf("expected empty groupings, got %+v", summary)
	}

	var buf bytes.Buffer
	if err := summary.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != 3 {
		t.Errorf("expected header plus two total rows, got %d lines", len(got))
	}
}
