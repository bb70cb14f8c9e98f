package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SouravGRoy/pcl-portal-api/internal/service"
	"github.com/SouravGRoy/pcl-portal-api/pkg/response"
)

// GradeHandler serves aggregated grade views.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// GroupGrades godoc
// @Summary Group grade statistics
// @Description Per-student GPA summaries plus class averages for a group, computed from graded submissions
// @Tags Grades
// @Produce json
// @Param groupID path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /groups/{groupID}/grades [get]
func (h *GradeHandler) GroupGrades(c *gin.Context) {
	stats, err := h.service.GroupStudentGrades(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// StudentGrades godoc
// @Summary One student's grade summary in a group
// @Tags Grades
// @Produce json
// @Param groupID path string true "Group ID"
// @Param studentID path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /groups/{groupID}/grades/{studentID} [get]
func (h *GradeHandler) StudentGrades(c *gin.Context) {
	summary, err := h.service.StudentGrades(c.Request.Context(), c.Param("groupID"), c.Param("studentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
