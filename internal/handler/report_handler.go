package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SouravGRoy/pcl-portal-api/internal/models"
	"github.com/SouravGRoy/pcl-portal-api/internal/service"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
	"github.com/SouravGRoy/pcl-portal-api/pkg/export"
	"github.com/SouravGRoy/pcl-portal-api/pkg/response"
)

// ReportHandler serves attendance reports and their file exports.
type ReportHandler struct {
	sessions *service.SessionService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
}

// NewReportHandler creates a new handler.
func NewReportHandler(sessions *service.SessionService) *ReportHandler {
	return &ReportHandler{
		sessions: sessions,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
	}
}

// SessionReport godoc
// @Summary Session attendance report
// @Description List who checked in to a session, with status and distance
// @Tags Reports
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/report [get]
func (h *ReportHandler) SessionReport(c *gin.Context) {
	rows, err := h.sessions.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportSessionReport godoc
// @Summary Export a session attendance report
// @Description Download the session report as CSV or PDF, selected by the format query parameter
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/report/export [get]
func (h *ReportHandler) ExportSessionReport(c *gin.Context) {
	sessionID := c.Param("id")
	rows, err := h.sessions.Report(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := sessionReportDataset(rows)
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	switch format {
	case "csv":
		data, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=session-%s-report.csv", sessionID))
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		data, err := h.pdf.Render(dataset, "Attendance Report")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=session-%s-report.pdf", sessionID))
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

// StudentHistory godoc
// @Summary Student attendance history
// @Tags Reports
// @Produce json
// @Param studentID path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentID}/attendance [get]
func (h *ReportHandler) StudentHistory(c *gin.Context) {
	rows, err := h.sessions.StudentHistory(c.Request.Context(), c.Param("studentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

func sessionReportDataset(rows []models.SessionReportRow) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Student ID", "Student Name", "Status", "Check-In Time", "Distance (m)"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID":    row.StudentID,
			"Student Name":  row.StudentName,
			"Status":        string(row.Status),
			"Check-In Time": row.CheckInTime.UTC().Format(time.RFC3339),
			"Distance (m)":  fmt.Sprintf("%.1f", row.DistanceFromFacultyMeters),
		})
	}
	return dataset
}
