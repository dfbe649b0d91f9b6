package handler

import (
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billingService   *service.BillingService
	dashboardService *service.DashboardService
}

func NewBillingHandler(billingService *service.BillingService, dashboardService *service.DashboardService) *BillingHandler {
	return &BillingHandler{
		billingService:   billingService,
		dashboardService: dashboardService,
	}
}

// ListPayments retrieves every payment, newest first
func (h *BillingHandler) ListPayments(c *gin.Context) {
	payments, err := h.billingService.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"payments": payments,
		"count":    len(payments),
	})
}

// ListProcedures retrieves the procedure catalog
func (h *BillingHandler) ListProcedures(c *gin.Context) {
	procedures, err := h.billingService.Procedures(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, procedures)
}

// DashboardStats retrieves the admin overview counters
func (h *BillingHandler) DashboardStats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}
