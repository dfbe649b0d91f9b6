package handler

import (
	"hospital-operations-backend/internal/config"
	"hospital-operations-backend/internal/middleware"
	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Admission      *AdmissionHandler
	Billing        *BillingHandler
	Patient        *PatientHandler
	Room           *RoomHandler
	Schedule       *ScheduleHandler
	Staff          *StaffHandler
	Swap           *SwapHandler
	Unavailability *UnavailabilityHandler
}

// NewRouter builds the gin engine with middleware and all routes
func NewRouter(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "hospital-operations-backend",
		})
	})

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())

	clinical := middleware.RequireRole(models.RoleDoctor, models.RoleNurse, models.RoleAdmin)
	admin := middleware.RequireAdmin()

	admissions := api.Group("/admissions")
	{
		admissions.GET("", h.Admission.ListAdmissions)
		admissions.POST("", clinical, h.Admission.CreateAdmission)
		admissions.GET("/:id", h.Admission.GetAdmission)
		admissions.GET("/:id/history", h.Admission.GetHistory)
		admissions.POST("/:id/examine", h.Admission.Examine)
		admissions.POST("/:id/assign-room", h.Admission.AssignRoom)
		admissions.POST("/:id/approve-discharge", h.Admission.ApproveDischarge)
		admissions.POST("/:id/reject-discharge", h.Admission.RejectDischarge)
		admissions.GET("/:id/payment", h.Admission.GetPayment)
		admissions.POST("/:id/payment", h.Admission.ComputePayment)
	}

	patients := api.Group("/patients")
	{
		patients.GET("", h.Patient.ListPatients)
		patients.POST("", clinical, h.Patient.CreatePatient)
		patients.GET("/admittable", h.Patient.Admittable)
		patients.GET("/:id", h.Patient.GetPatient)
		patients.PUT("/:id", clinical, h.Patient.UpdatePatient)
		patients.POST("/:id/archive", admin, h.Patient.ArchivePatient)
		patients.POST("/:id/restore", admin, h.Patient.RestorePatient)
		patients.POST("/:id/predict", h.Patient.Predict)
		patients.GET("/:id/predictions", h.Patient.Predictions)
	}

	rooms := api.Group("/rooms")
	{
		rooms.GET("", h.Room.GetAllRooms)
		rooms.GET("/available", h.Room.GetAvailableRooms)
		rooms.GET("/:id", h.Room.GetRoom)
		rooms.POST("", admin, h.Room.CreateRoom)
		rooms.PUT("/:id", admin, h.Room.UpdateRoom)
	}

	api.GET("/procedures", h.Billing.ListProcedures)
	api.GET("/payments", admin, h.Billing.ListPayments)
	api.GET("/dashboard/stats", admin, h.Billing.DashboardStats)

	staff := api.Group("/staff")
	{
		staff.GET("", h.Staff.ListStaff)
		staff.GET("/:id", h.Staff.GetStaff)
		staff.POST("", admin, h.Staff.CreateStaff)
		staff.GET("/:id/schedules", h.Schedule.StaffSchedules)
	}

	schedules := api.Group("/schedules")
	{
		schedules.GET("", h.Schedule.ListSchedules)
		schedules.POST("", h.Schedule.CreateSchedule)
		schedules.POST("/bulk", h.Schedule.BulkCreateSchedules)
		schedules.GET("/me", h.Schedule.MySchedule)
		schedules.GET("/weekly", h.Schedule.Weekly)
		schedules.GET("/weekly/export", h.Schedule.ExportWeekly)
		schedules.GET("/working", h.Schedule.CurrentlyWorking)
		schedules.GET("/coverage", h.Schedule.Coverage)
		schedules.GET("/night-rotation", admin, h.Schedule.NightRotation)
		schedules.GET("/:id", h.Schedule.GetSchedule)
		schedules.PUT("/:id", h.Schedule.UpdateSchedule)
		schedules.DELETE("/:id", h.Schedule.DeleteSchedule)
	}

	swaps := api.Group("/swaps")
	{
		swaps.GET("", h.Swap.ListSwaps)
		swaps.POST("", h.Swap.CreateSwap)
		swaps.GET("/:id", h.Swap.GetSwap)
		swaps.POST("/:id/approve", h.Swap.ApproveSwap)
		swaps.POST("/:id/reject", h.Swap.RejectSwap)
		swaps.POST("/:id/cancel", h.Swap.CancelSwap)
	}

	unavailability := api.Group("/unavailability")
	{
		unavailability.GET("", h.Unavailability.List)
		unavailability.POST("", h.Unavailability.Create)
		unavailability.POST("/:id/approve", h.Unavailability.Approve)
		unavailability.POST("/:id/reject", h.Unavailability.Reject)
		unavailability.POST("/:id/cancel", h.Unavailability.Cancel)
	}

	return r
}
