package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SouravGRoy/pcl-portal-api/internal/service"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
	"github.com/SouravGRoy/pcl-portal-api/pkg/response"
)

// SessionHandler exposes faculty session management endpoints.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler creates a new handler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// Create godoc
// @Summary Start an attendance session
// @Description Create a QR attendance session anchored at the faculty's current coordinates
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}

	session, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"session":  session,
		"scan_url": h.service.ScanURL(session),
	})
}

// Get godoc
// @Summary Get a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Close godoc
// @Summary Close a session early
// @Description Moves the session's expiry to now so further scans are rejected
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/close [post]
func (h *SessionHandler) Close(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	session, err := h.service.Close(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// ListByGroup godoc
// @Summary List a group's sessions
// @Tags Sessions
// @Produce json
// @Param groupID path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{groupID}/sessions [get]
func (h *SessionHandler) ListByGroup(c *gin.Context) {
	sessions, err := h.service.ListByGroup(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// QRImage godoc
// @Summary Render a session QR code
// @Description Returns a PNG encoding the session's scan URL, sized by the optional size query parameter
// @Tags Sessions
// @Produce png
// @Param id path string true "Session ID"
// @Param size query int false "Image size in pixels"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/qr [get]
func (h *SessionHandler) QRImage(c *gin.Context) {
	size := parseQueryInt(c, "size", 256)
	png, err := h.service.QRImage(c.Request.Context(), c.Param("id"), size)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
