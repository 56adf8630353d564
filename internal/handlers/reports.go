package handlers

import (
	"bytes"
	"net/http"

	"taskboard/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReportHandler struct {
	db            *gorm.DB
	reportService services.ReportService
}

func NewReportHandler(db *gorm.DB, reportService services.ReportService) *ReportHandler {
	return &ReportHandler{db: db, reportService: reportService}
}

// TasksSummary aggregates the caller's visible tasks. format=csv sends
// the summary as a flat file attachment, anything else returns JSON.
func (h *ReportHandler) TasksSummary(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	filter := services.ReportFilter{
		Status: c.Query("status"),
		User:   c.Query("user"),
	}

	if raw := c.Query("startDate"); raw != "" {
		start, ok := parseDate(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []services.FieldError{
				{Field: "startDate", Message: "Valid start date is required"},
			}})
			return
		}
		filter.StartDate = &start
	}

	if raw := c.Query("endDate"); raw != "" {
		end, ok := parseDate(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []services.FieldError{
				{Field: "endDate", Message: "Valid end date is required"},
			}})
			return
		}
		filter.EndDate = &end
	}

	summary, err := h.reportService.Summarize(h.db, caller, filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := summary.WriteCSV(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		c.Header("Content-Disposition", `attachment; filename="tasks_summary.csv"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, summary)
}
