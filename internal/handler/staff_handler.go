package handler

import (
	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type StaffHandler struct {
	staffService *service.StaffService
}

func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{
		staffService: staffService,
	}
}

// CreateStaff registers a staff member (admin only)
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req service.StaffInput
	if !bindJSON(c, &req) {
		return
	}

	staff, err := h.staffService.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, staff)
}

// ListStaff lists staff, filtered by ?role
func (h *StaffHandler) ListStaff(c *gin.Context) {
	staff, err := h.staffService.List(c.Request.Context(), models.Role(c.Query("role")))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, staff)
}

// GetStaff retrieves one staff member
func (h *StaffHandler) GetStaff(c *gin.Context) {
	id, ok := parseID(c, "id", "staff")
	if !ok {
		return
	}

	staff, err := h.staffService.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, staff)
}
