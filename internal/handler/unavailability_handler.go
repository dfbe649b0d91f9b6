package handler

import (
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type UnavailabilityHandler struct {
	unavailabilityService *service.UnavailabilityService
}

func NewUnavailabilityHandler(unavailabilityService *service.UnavailabilityService) *UnavailabilityHandler {
	return &UnavailabilityHandler{
		unavailabilityService: unavailabilityService,
	}
}

func (h *UnavailabilityHandler) Create(c *gin.Context) {
	var req service.UnavailabilityInput
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.unavailabilityService.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, request)
}

func (h *UnavailabilityHandler) List(c *gin.Context) {
	requests, err := h.unavailabilityService.List(c.Request.Context(), actorFromContext(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, requests)
}

func (h *UnavailabilityHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id", "request")
	if !ok {
		return
	}

	var req reviewRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	request, err := h.unavailabilityService.Approve(c.Request.Context(), actorFromContext(c), id, req.Notes)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

func (h *UnavailabilityHandler) Reject(c *gin.Context) {
	id, ok := parseID(c, "id", "request")
	if !ok {
		return
	}

	var req reviewRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	request, err := h.unavailabilityService.Reject(c.Request.Context(), actorFromContext(c), id, req.Notes)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

func (h *UnavailabilityHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id", "request")
	if !ok {
		return
	}

	request, err := h.unavailabilityService.Cancel(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}
