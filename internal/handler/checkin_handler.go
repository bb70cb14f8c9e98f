package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SouravGRoy/pcl-portal-api/internal/service"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
	"github.com/SouravGRoy/pcl-portal-api/pkg/response"
)

// CheckInHandler exposes the student-facing attendance endpoints.
type CheckInHandler struct {
	service *service.CheckInService
}

// NewCheckInHandler creates a new handler.
func NewCheckInHandler(svc *service.CheckInService) *CheckInHandler {
	return &CheckInHandler{service: svc}
}

// CheckIn godoc
// @Summary Check in to an attendance session
// @Description Record attendance for the authenticated student using a scanned QR token and device coordinates
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.CheckInRequest true "Check-in payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /attendance/check-in [post]
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check-in payload"))
		return
	}

	record, err := h.service.ProcessCheckIn(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, record)
}

// ScanPreview godoc
// @Summary Preview a scanned attendance session
// @Description Resolve a scanned token or URL to its session so clients can show session details before checking in
// @Tags Attendance
// @Produce json
// @Param token query string true "QR token or full scan URL"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/scan [get]
func (h *CheckInHandler) ScanPreview(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token query parameter is required"))
		return
	}

	session, err := h.service.ResolveSession(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"session_id":   session.ID,
		"session_name": session.SessionName,
		"session_type": session.SessionType,
		"expires_at":   session.ExpiresAt,
		"expired":      session.Expired(time.Now().UTC()),
	}, nil)
}
