package handler

import (
	"net/http"
	"strconv"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AdmissionHandler struct {
	admissionService *service.AdmissionService
	billingService   *service.BillingService
}

func NewAdmissionHandler(admissionService *service.AdmissionService, billingService *service.BillingService) *AdmissionHandler {
	return &AdmissionHandler{
		admissionService: admissionService,
		billingService:   billingService,
	}
}

type assignRoomRequest struct {
	RoomID uint `json:"room_id" binding:"required"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type paymentRequest struct {
	ProcedureIDs []uint `json:"procedure_ids"`
	Method       string `json:"method"`
}

// CreateAdmission opens a new encounter
func (h *AdmissionHandler) CreateAdmission(c *gin.Context) {
	var req service.CreateAdmissionInput
	if !bindJSON(c, &req) {
		return
	}

	admission, err := h.admissionService.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, admission)
}

// ListAdmissions lists admissions, filtered by ?status= and ?patient_id=
func (h *AdmissionHandler) ListAdmissions(c *gin.Context) {
	filter := repository.AdmissionFilter{Status: models.AdmissionStatus(c.Query("status"))}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid patient ID")
			return
		}
		filter.PatientID = uint(id)
	}

	admissions, err := h.admissionService.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"admissions": admissions,
		"count":      len(admissions),
	})
}

// GetAdmission retrieves one admission with its relations
func (h *AdmissionHandler) GetAdmission(c *gin.Context) {
	id, ok := parseID(c, "id", "admission")
	if !ok {
		return
	}

	admission, err := h.admissionService.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, admission)
}

// GetHistory retrieves the audit trail of an admission
func (h *AdmissionHandler) GetHistory(c *gin.Context) {
	id, ok := parseID(c, "id", "admission")
	if !ok {
		return
	}

	logs, err := h.admissionService.History(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, logs)
}

// Examine records a doctor's examination
func (h *AdmissionHandler) Examine(c *gin.Context) {
	id, ok := parseID(c, "id", "admission")
	if !ok {
		return
	}

	var req service.ExamineInput
	if !bindJSON(c, &req) {
		return
	}

	admission, err := h.admissionService.Examine(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, admission)
}

// AssignRoom moves an admitted patient to a room
func (h *AdmissionHandler) AssignRoom(c *gin.Context) {
	id, ok := parseID(c, "id", "admission")
	if !ok {
		return
	}

	var req assignRoomRequest
	if !bindJSON(c, &req) {
		return
	}

	admission, err := h.admissionService.AssignRoom(c.Request.Context(), actorFromContext(c), id, req.RoomID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, admission)
}

// ApproveDischarge finalizes a discharge and bills the encounter
func (h *AdmissionHandler) ApproveDischarge(c *gin.Context) {
	id, ok := parseID(c, "id", "admission")
	if !ok {
		return
	}

	admission, err := h.admissionService.ApproveDischarge(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, admission)
}

// RejectDischarge refuses a pending discharge
func (h *AdmissionHandler) RejectDischarge(c *gin.Context) {
	id, ok := parseID(c, "id", "admission")
	if !ok {
		return
	}

	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}

	admission, err := h.admissionService.RejectDischarge(c.Request.Context(), actorFromContext(c), id, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, admission)
}

// ComputePayment bills the admission; repeated calls return the existing payment with 200
func (h *AdmissionHandler) ComputePayment(c *gin.Context) {
	id, ok := parseID(c, "id", "admission")
	if !ok {
		return
	}

	var req paymentRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	payment, created, err := h.billingService.ComputePayment(c.Request.Context(), actorFromContext(c), id, req.ProcedureIDs, req.Method)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.StoredResponse(c, created, payment)
}

// GetPayment retrieves the payment of an admission
func (h *AdmissionHandler) GetPayment(c *gin.Context) {
	id, ok := parseID(c, "id", "admission")
	if !ok {
		return
	}

	payment, err := h.billingService.GetByAdmission(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, payment)
}
