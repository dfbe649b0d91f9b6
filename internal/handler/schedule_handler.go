package handler

import (
	"net/http"
	"strconv"
	"time"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
	}
}

type bulkScheduleRequest struct {
	Schedules []service.ScheduleEntry `json:"schedules" binding:"required"`
}

// CreateSchedule schedules one shift (admin only)
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req service.ScheduleEntry
	if !bindJSON(c, &req) {
		return
	}

	schedule, err := h.scheduleService.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, schedule)
}

// BulkCreateSchedules schedules many shifts; per-entry failures are reported, not fatal
func (h *ScheduleHandler) BulkCreateSchedules(c *gin.Context) {
	var req bulkScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.scheduleService.BulkCreate(c.Request.Context(), actorFromContext(c), req.Schedules)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if len(result.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"success": len(result.Errors) == 0,
		"data":    result,
	})
}

// ListSchedules lists shifts between ?start_date and ?end_date, optionally by ?role
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	start, ok := optionalDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := optionalDate(c, "end_date")
	if !ok {
		return
	}
	if start == nil || end == nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	schedules, err := h.scheduleService.QueryByDateRange(c.Request.Context(), *start, *end, models.Role(c.Query("role")))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"schedules": schedules,
		"count":     len(schedules),
	})
}

// GetSchedule retrieves one shift
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id, ok := parseID(c, "id", "schedule")
	if !ok {
		return
	}

	schedule, err := h.scheduleService.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, schedule)
}

// UpdateSchedule edits an unlocked shift (admin only)
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	id, ok := parseID(c, "id", "schedule")
	if !ok {
		return
	}

	var req service.ScheduleUpdate
	if !bindJSON(c, &req) {
		return
	}

	schedule, err := h.scheduleService.Update(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, schedule)
}

// DeleteSchedule removes an unlocked shift (admin only)
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id, ok := parseID(c, "id", "schedule")
	if !ok {
		return
	}

	if err := h.scheduleService.Delete(c.Request.Context(), actorFromContext(c), id); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.MessageResponse(c, "Schedule deleted successfully")
}

// StaffSchedules lists one staff member's shifts
func (h *ScheduleHandler) StaffSchedules(c *gin.Context) {
	staffID, ok := parseID(c, "staff_id", "staff")
	if !ok {
		return
	}
	from, ok := optionalDate(c, "start_date")
	if !ok {
		return
	}
	to, ok := optionalDate(c, "end_date")
	if !ok {
		return
	}

	schedules, err := h.scheduleService.QueryByStaff(c.Request.Context(), staffID, from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, schedules)
}

// MySchedule lists the caller's shifts for the month of ?date
func (h *ScheduleHandler) MySchedule(c *gin.Context) {
	day, ok := optionalDate(c, "date")
	if !ok {
		return
	}

	schedules, err := h.scheduleService.MySchedule(c.Request.Context(), actorFromContext(c), day)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, schedules)
}

// Weekly returns the Monday to Sunday roster containing ?start_date
func (h *ScheduleHandler) Weekly(c *gin.Context) {
	start, ok := optionalDate(c, "start_date")
	if !ok {
		return
	}

	week, err := h.scheduleService.Weekly(c.Request.Context(), start)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, week)
}

// ExportWeekly downloads the weekly roster as xlsx
func (h *ScheduleHandler) ExportWeekly(c *gin.Context) {
	start, ok := optionalDate(c, "start_date")
	if !ok {
		return
	}

	data, filename, err := h.scheduleService.ExportWeekly(c.Request.Context(), start)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.FileResponse(c, filename, xlsxContentType, data)
}

// CurrentlyWorking lists staff of ?role on shift at ?date and ?time; both default to now
func (h *ScheduleHandler) CurrentlyWorking(c *gin.Context) {
	now := time.Now().UTC()
	date := models.DateOf(now)
	if d, ok := optionalDate(c, "date"); !ok {
		return
	} else if d != nil {
		date = *d
	}
	clock := models.ClockOf(now)
	if raw := c.Query("time"); raw != "" {
		parsed, err := models.ParseClock(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "time: "+err.Error())
			return
		}
		clock = parsed
	}

	ids, err := h.scheduleService.ListCurrentlyWorking(c.Request.Context(), date, clock, models.Role(c.Query("role")))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"date":      models.FormatDate(date),
		"time":      clock.String(),
		"staff_ids": ids,
	})
}

// Coverage reports whether ?role (and optionally ?staff_id) is on shift at ?date and ?time
func (h *ScheduleHandler) Coverage(c *gin.Context) {
	date, ok := optionalDate(c, "date")
	if !ok {
		return
	}
	if date == nil || c.Query("time") == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "date and time are required")
		return
	}
	clock, err := models.ParseClock(c.Query("time"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "time: "+err.Error())
		return
	}
	var staffID uint
	if raw := c.Query("staff_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid staff ID")
			return
		}
		staffID = uint(id)
	}

	role := models.Role(c.Query("role"))
	if role == "" {
		role = models.RoleDoctor
	}
	coverage, err := h.scheduleService.Coverage(c.Request.Context(), *date, clock, role, staffID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, coverage)
}

// NightRotation ranks staff of ?role by night shifts held between ?start_date and ?end_date
func (h *ScheduleHandler) NightRotation(c *gin.Context) {
	from, ok := optionalDate(c, "start_date")
	if !ok {
		return
	}
	to, ok := optionalDate(c, "end_date")
	if !ok {
		return
	}
	if from == nil || to == nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	suggestions, err := h.scheduleService.NightShiftRotation(c.Request.Context(), *from, *to, models.Role(c.Query("role")))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, suggestions)
}
