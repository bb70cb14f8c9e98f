package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SouravGRoy/pcl-portal-api/internal/service"
	"github.com/SouravGRoy/pcl-portal-api/pkg/response"
)

// GroupHandler serves group and roster reads.
type GroupHandler struct {
	service *service.GroupService
}

// NewGroupHandler creates a new handler.
func NewGroupHandler(svc *service.GroupService) *GroupHandler {
	return &GroupHandler{service: svc}
}

// Get godoc
// @Summary Group details
// @Tags Groups
// @Produce json
// @Param groupID path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /groups/{groupID} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.service.Get(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Roster godoc
// @Summary Group roster
// @Description Members of a group joined with student names
// @Tags Groups
// @Produce json
// @Param groupID path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{groupID}/members [get]
func (h *GroupHandler) Roster(c *gin.Context) {
	members, err := h.service.Roster(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}
