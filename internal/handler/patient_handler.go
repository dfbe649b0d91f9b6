package handler

import (
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	patientService *service.PatientService
	riskService    *service.RiskService
}

func NewPatientHandler(patientService *service.PatientService, riskService *service.RiskService) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		riskService:    riskService,
	}
}

type predictRequest struct {
	Notes string `json:"notes"`
}

// CreatePatient registers a patient
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req service.PatientInput
	if !bindJSON(c, &req) {
		return
	}

	patient, err := h.patientService.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, patient)
}

// ListPatients lists active patients, or archived ones with ?archived=true
func (h *PatientHandler) ListPatients(c *gin.Context) {
	patients, err := h.patientService.List(c.Request.Context(), c.Query("archived") == "true")
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"patients": patients,
		"count":    len(patients),
	})
}

// Admittable lists patients who can be admitted now
func (h *PatientHandler) Admittable(c *gin.Context) {
	patients, err := h.patientService.Admittable(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, patients)
}

// GetPatient retrieves a patient by ID
func (h *PatientHandler) GetPatient(c *gin.Context) {
	id, ok := parseID(c, "id", "patient")
	if !ok {
		return
	}

	patient, err := h.patientService.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, patient)
}

// UpdatePatient replaces a patient's details
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	id, ok := parseID(c, "id", "patient")
	if !ok {
		return
	}

	var req service.PatientInput
	if !bindJSON(c, &req) {
		return
	}

	patient, err := h.patientService.Update(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, patient)
}

// ArchivePatient hides a patient (admin only)
func (h *PatientHandler) ArchivePatient(c *gin.Context) {
	id, ok := parseID(c, "id", "patient")
	if !ok {
		return
	}

	patient, err := h.patientService.Archive(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, patient)
}

// RestorePatient un-archives a patient (admin only)
func (h *PatientHandler) RestorePatient(c *gin.Context) {
	id, ok := parseID(c, "id", "patient")
	if !ok {
		return
	}

	patient, err := h.patientService.Restore(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, patient)
}

// Predict scores the patient's readmission risk
func (h *PatientHandler) Predict(c *gin.Context) {
	id, ok := parseID(c, "id", "patient")
	if !ok {
		return
	}

	var req predictRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	record, err := h.riskService.Predict(c.Request.Context(), actorFromContext(c), id, req.Notes)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, record)
}

// Predictions lists the patient's risk timeline
func (h *PatientHandler) Predictions(c *gin.Context) {
	id, ok := parseID(c, "id", "patient")
	if !ok {
		return
	}

	records, err := h.riskService.Timeline(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, records)
}
