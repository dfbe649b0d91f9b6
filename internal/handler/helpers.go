package handler

import (
	"errors"
	"net/http"
	"strconv"

	"hospital-operations-backend/internal/middleware"
	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// actorFromContext builds the service actor from the identity AuthMiddleware injected
func actorFromContext(c *gin.Context) service.Actor {
	staffID, _ := c.Get(middleware.ContextStaffID)
	role, _ := c.Get(middleware.ContextRole)
	id, _ := staffID.(uint)
	r, _ := role.(models.Role)
	return service.Actor{StaffID: id, Role: r}
}

// parseID reads a uint path parameter, writing 400 on failure
func parseID(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+label+" ID")
		return 0, false
	}
	return uint(id), true
}

// optionalDate parses a YYYY-MM-DD query parameter; empty yields nil
func optionalDate(c *gin.Context, key string) (*datatypes.Date, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, key+": "+err.Error())
		return nil, false
	}
	return &d, true
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	status, _ := classify(err)
	return status
}

// classify maps service errors onto an HTTP status and a stable error code
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, service.ErrRoomUnavailable):
		return http.StatusConflict, "room_unavailable"
	case errors.Is(err, service.ErrRoomFull):
		return http.StatusConflict, "room_full"
	case errors.Is(err, service.ErrDuplicateShift):
		return http.StatusConflict, "duplicate_shift"
	case errors.Is(err, service.ErrActiveAdmission):
		return http.StatusConflict, "active_admission"
	case errors.Is(err, service.ErrStaleSwap):
		return http.StatusConflict, "stale_swap"
	case errors.Is(err, service.ErrShiftLocked):
		return http.StatusConflict, "shift_locked"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, service.ErrRoleMismatch):
		return http.StatusBadRequest, "role_mismatch"
	case errors.Is(err, service.ErrScorerUnavailable):
		return http.StatusBadGateway, "scorer_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeServiceError sends the mapped status and code; internal failures are not echoed to the client.
func writeServiceError(c *gin.Context, err error) {
	status, code := classify(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		utils.CodedErrorResponse(c, status, code, "Internal server error")
		return
	}
	utils.CodedErrorResponse(c, status, code, err.Error())
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
