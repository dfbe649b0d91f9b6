package handler

import (
	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type SwapHandler struct {
	swapService *service.SwapService
}

func NewSwapHandler(swapService *service.SwapService) *SwapHandler {
	return &SwapHandler{
		swapService: swapService,
	}
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

// CreateSwap files a swap request for the caller's shift
func (h *SwapHandler) CreateSwap(c *gin.Context) {
	var req service.SwapInput
	if !bindJSON(c, &req) {
		return
	}

	swap, err := h.swapService.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, swap)
}

// ListSwaps lists swap requests visible to the caller, filtered by ?status
func (h *SwapHandler) ListSwaps(c *gin.Context) {
	swaps, err := h.swapService.List(c.Request.Context(), actorFromContext(c), models.RequestStatus(c.Query("status")))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"swaps": swaps,
		"count": len(swaps),
	})
}

// GetSwap retrieves one swap request
func (h *SwapHandler) GetSwap(c *gin.Context) {
	id, ok := parseID(c, "id", "swap")
	if !ok {
		return
	}

	swap, err := h.swapService.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, swap)
}

// ApproveSwap applies a pending swap (admin only)
func (h *SwapHandler) ApproveSwap(c *gin.Context) {
	id, ok := parseID(c, "id", "swap")
	if !ok {
		return
	}

	var req reviewRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	swap, err := h.swapService.Approve(c.Request.Context(), actorFromContext(c), id, req.Notes)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, swap)
}

// RejectSwap declines a pending swap (admin only)
func (h *SwapHandler) RejectSwap(c *gin.Context) {
	id, ok := parseID(c, "id", "swap")
	if !ok {
		return
	}

	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}

	swap, err := h.swapService.Reject(c.Request.Context(), actorFromContext(c), id, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, swap)
}

// CancelSwap withdraws the caller's own pending swap
func (h *SwapHandler) CancelSwap(c *gin.Context) {
	id, ok := parseID(c, "id", "swap")
	if !ok {
		return
	}

	swap, err := h.swapService.Cancel(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, swap)
}
