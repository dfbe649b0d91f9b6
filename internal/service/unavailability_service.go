package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UnavailabilityInput struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type UnavailabilityService struct {
	db           *gorm.DB
	requestRepo  *repository.UnavailabilityRepository
	scheduleRepo *repository.ScheduleRepository
	auditRepo    *repository.AuditRepository
	log          *zap.Logger
	now          Clock
}

func NewUnavailabilityService(
	db *gorm.DB,
	requestRepo *repository.UnavailabilityRepository,
	scheduleRepo *repository.ScheduleRepository,
	auditRepo *repository.AuditRepository,
	log *zap.Logger,
) *UnavailabilityService {
	return &UnavailabilityService{
		db:           db,
		requestRepo:  requestRepo,
		scheduleRepo: scheduleRepo,
		auditRepo:    auditRepo,
		log:          log,
		now:          systemClock,
	}
}

func (s *UnavailabilityService) SetClock(now Clock) {
	s.now = now
}

// Create files a leave request for the actor
func (s *UnavailabilityService) Create(ctx context.Context, actor Actor, in UnavailabilityInput) (*models.UnavailabilityRequest, error) {
	if err := actor.require("request unavailability", models.RoleDoctor, models.RoleNurse); err != nil {
		return nil, err
	}
	start, err := models.ParseDate(in.StartDate)
	if err != nil {
		return nil, validationf("start_date: %v", err)
	}
	end, err := models.ParseDate(in.EndDate)
	if err != nil {
		return nil, validationf("end_date: %v", err)
	}
	if time.Time(end).Before(time.Time(start)) {
		return nil, validationf("end_date %s is before start_date %s", in.EndDate, in.StartDate)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, validationf("reason is required")
	}

	req := &models.UnavailabilityRequest{
		StaffID:   actor.StaffID,
		StartDate: start,
		EndDate:   end,
		Reason:    in.Reason,
		Status:    models.RequestPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create unavailability request: %w", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "unavailability_request", "unavailability_request", req.ID,
		fmt.Sprintf("Unavailable %s to %s", in.StartDate, in.EndDate))
	return req, nil
}

// Approve accepts the request and takes the staff member off every shift in the range.
func (s *UnavailabilityService) Approve(ctx context.Context, actor Actor, id uint, notes string) (*models.UnavailabilityRequest, error) {
	if err := actor.require("approve unavailability", models.RoleAdmin); err != nil {
		return nil, err
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.requestRepo.WithTx(tx)
		req, err := requests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := checkRequestTransition("unavailability request", req.Status, models.RequestApproved); err != nil {
			return err
		}

		affected, err = s.scheduleRepo.WithTx(tx).MarkUnavailable(ctx, req.StaffID, req.StartDate, req.EndDate)
		if err != nil {
			return fmt.Errorf("failed to mark shifts unavailable: %w", err)
		}
		return s.review(ctx, requests, actor, id, models.RequestApproved, notes)
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "unavailability_approve", "unavailability_request", id,
		fmt.Sprintf("Approved; %d shift(s) marked unavailable", affected))
	s.log.Info("unavailability approved", zap.Uint("request_id", id), zap.Int64("shifts", affected))
	return s.requestRepo.GetByID(ctx, id)
}

// Reject declines a pending request
func (s *UnavailabilityService) Reject(ctx context.Context, actor Actor, id uint, notes string) (*models.UnavailabilityRequest, error) {
	if err := actor.require("reject unavailability", models.RoleAdmin); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.requestRepo.WithTx(tx)
		req, err := requests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := checkRequestTransition("unavailability request", req.Status, models.RequestRejected); err != nil {
			return err
		}
		return s.review(ctx, requests, actor, id, models.RequestRejected, notes)
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "unavailability_reject", "unavailability_request", id, notes)
	return s.requestRepo.GetByID(ctx, id)
}

// Cancel withdraws the actor's own pending request
func (s *UnavailabilityService) Cancel(ctx context.Context, actor Actor, id uint) (*models.UnavailabilityRequest, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.requestRepo.WithTx(tx)
		req, err := requests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.StaffID != actor.StaffID {
			return fmt.Errorf("%w: only the requester can cancel request %d", ErrForbidden, id)
		}
		if err := checkRequestTransition("unavailability request", req.Status, models.RequestCancelled); err != nil {
			return err
		}
		return requests.UpdateFields(ctx, id, map[string]interface{}{"status": models.RequestCancelled})
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "unavailability_cancel", "unavailability_request", id, "")
	return s.requestRepo.GetByID(ctx, id)
}

// List shows admins every request and everyone else their own
func (s *UnavailabilityService) List(ctx context.Context, actor Actor) ([]models.UnavailabilityRequest, error) {
	if actor.Role == models.RoleAdmin {
		return s.requestRepo.List(ctx, nil)
	}
	staffID := actor.StaffID
	return s.requestRepo.List(ctx, &staffID)
}

func (s *UnavailabilityService) review(ctx context.Context, requests *repository.UnavailabilityRepository, actor Actor, id uint, status models.RequestStatus, notes string) error {
	now := s.now()
	return requests.UpdateFields(ctx, id, map[string]interface{}{
		"status":      status,
		"admin_notes": notes,
		"reviewed_by": actor.IDPtr(),
		"reviewed_at": &now,
	})
}
