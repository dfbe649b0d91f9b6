package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SwapInput requests handing over RequesterShiftID. Without RecipientShiftID the shift
// goes to the open coverage pool on approval.
type SwapInput struct {
	RequesterShiftID uint   `json:"requester_shift_id" binding:"required"`
	RecipientShiftID *uint  `json:"recipient_shift_id"`
	Reason           string `json:"reason" binding:"required"`
}

type SwapService struct {
	db           *gorm.DB
	swapRepo     *repository.SwapRepository
	scheduleRepo *repository.ScheduleRepository
	staffRepo    *repository.StaffRepository
	auditRepo    *repository.AuditRepository
	log          *zap.Logger
	now          Clock
}

func NewSwapService(
	db *gorm.DB,
	swapRepo *repository.SwapRepository,
	scheduleRepo *repository.ScheduleRepository,
	staffRepo *repository.StaffRepository,
	auditRepo *repository.AuditRepository,
	log *zap.Logger,
) *SwapService {
	return &SwapService{
		db:           db,
		swapRepo:     swapRepo,
		scheduleRepo: scheduleRepo,
		staffRepo:    staffRepo,
		auditRepo:    auditRepo,
		log:          log,
		now:          systemClock,
	}
}

// SetClock replaces the time source.
func (s *SwapService) SetClock(now Clock) {
	s.now = now
}

// Create files a swap request for one of the actor's own future shifts.
func (s *SwapService) Create(ctx context.Context, actor Actor, in SwapInput) (*models.ShiftSwapRequest, error) {
	if err := actor.require("request shift swap", models.RoleDoctor, models.RoleNurse); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, validationf("reason is required")
	}

	shift, err := s.scheduleRepo.GetByID(ctx, in.RequesterShiftID)
	if err != nil {
		return nil, err
	}
	if !shift.OwnedBy(actor.StaffID) {
		return nil, validationf("shift %d does not belong to staff %d", shift.ID, actor.StaffID)
	}
	if shift.IsLocked {
		return nil, fmt.Errorf("%w: shift %d", ErrShiftLocked, shift.ID)
	}
	if !shift.StartsAt().After(s.now()) {
		return nil, validationf("shift %d has already started", shift.ID)
	}

	swap := &models.ShiftSwapRequest{
		RequesterID:      actor.StaffID,
		RequesterShiftID: shift.ID,
		Reason:           in.Reason,
		Status:           models.RequestPending,
	}

	if in.RecipientShiftID != nil {
		other, err := s.scheduleRepo.GetByID(ctx, *in.RecipientShiftID)
		if err != nil {
			return nil, err
		}
		if other.ID == shift.ID {
			return nil, validationf("cannot swap a shift with itself")
		}
		if other.StaffID == nil {
			return nil, validationf("shift %d has no owner to swap with", other.ID)
		}
		if *other.StaffID == actor.StaffID {
			return nil, validationf("shift %d already belongs to the requester", other.ID)
		}
		if other.IsLocked {
			return nil, fmt.Errorf("%w: shift %d", ErrShiftLocked, other.ID)
		}

		requester, err := s.staffRepo.GetByID(ctx, actor.StaffID)
		if err != nil {
			return nil, err
		}
		recipient, err := s.staffRepo.GetByID(ctx, *other.StaffID)
		if err != nil {
			return nil, err
		}
		if requester.Role != recipient.Role {
			return nil, fmt.Errorf("%w: %s cannot swap with %s", ErrRoleMismatch, requester.Role, recipient.Role)
		}

		recipientID := recipient.ID
		otherID := other.ID
		swap.RecipientID = &recipientID
		swap.RecipientShiftID = &otherID
	}

	if err := s.swapRepo.Create(ctx, swap); err != nil {
		return nil, fmt.Errorf("failed to create swap request: %w", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "swap_request", "shift_swap_request", swap.ID,
		fmt.Sprintf("Requested swap of shift %d", shift.ID))
	s.log.Info("swap requested", zap.Uint("swap_id", swap.ID), zap.Uint("requester_id", actor.StaffID))
	return s.swapRepo.GetByID(ctx, swap.ID)
}

// Approve exchanges shift ownership, or releases the requester's shift to open coverage
// when no recipient was named.
func (s *SwapService) Approve(ctx context.Context, actor Actor, id uint, notes string) (*models.ShiftSwapRequest, error) {
	if err := actor.require("approve shift swap", models.RoleAdmin); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swaps := s.swapRepo.WithTx(tx)
		schedules := s.scheduleRepo.WithTx(tx)

		swap, err := swaps.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := checkRequestTransition("swap request", swap.Status, models.RequestApproved); err != nil {
			return err
		}

		mine, err := schedules.GetForUpdate(ctx, swap.RequesterShiftID)
		if err != nil {
			return err
		}
		if !mine.OwnedBy(swap.RequesterID) {
			return fmt.Errorf("%w: shift %d", ErrStaleSwap, mine.ID)
		}
		if mine.IsLocked {
			return fmt.Errorf("%w: shift %d", ErrShiftLocked, mine.ID)
		}

		if swap.RecipientShiftID == nil {
			if err := schedules.SetOwner(ctx, mine.ID, nil, false); err != nil {
				return fmt.Errorf("failed to release shift: %w", err)
			}
		} else {
			theirs, err := schedules.GetForUpdate(ctx, *swap.RecipientShiftID)
			if err != nil {
				return err
			}
			if swap.RecipientID == nil || !theirs.OwnedBy(*swap.RecipientID) {
				return fmt.Errorf("%w: shift %d", ErrStaleSwap, theirs.ID)
			}
			if theirs.IsLocked {
				return fmt.Errorf("%w: shift %d", ErrShiftLocked, theirs.ID)
			}
			if err := exchangeOwners(ctx, schedules, mine, theirs); err != nil {
				return err
			}
		}

		now := s.now()
		return swaps.UpdateFields(ctx, swap.ID, map[string]interface{}{
			"status":      models.RequestApproved,
			"admin_notes": notes,
			"reviewed_by": actor.IDPtr(),
			"reviewed_at": &now,
		})
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "swap_approve", "shift_swap_request", id, "Swap approved")
	s.log.Info("swap approved", zap.Uint("swap_id", id), zap.Uint("actor_id", actor.StaffID))
	return s.swapRepo.GetByID(ctx, id)
}

// Reject closes a pending request; a reason is mandatory.
func (s *SwapService) Reject(ctx context.Context, actor Actor, id uint, reason string) (*models.ShiftSwapRequest, error) {
	if err := actor.require("reject shift swap", models.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, validationf("reason is required to reject a swap")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swaps := s.swapRepo.WithTx(tx)
		swap, err := swaps.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := checkRequestTransition("swap request", swap.Status, models.RequestRejected); err != nil {
			return err
		}
		now := s.now()
		return swaps.UpdateFields(ctx, id, map[string]interface{}{
			"status":      models.RequestRejected,
			"admin_notes": reason,
			"reviewed_by": actor.IDPtr(),
			"reviewed_at": &now,
		})
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "swap_reject", "shift_swap_request", id, "Swap rejected: "+reason)
	return s.swapRepo.GetByID(ctx, id)
}

// Cancel withdraws a pending request; only its requester may do so.
func (s *SwapService) Cancel(ctx context.Context, actor Actor, id uint) (*models.ShiftSwapRequest, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swaps := s.swapRepo.WithTx(tx)
		swap, err := swaps.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if swap.RequesterID != actor.StaffID {
			return fmt.Errorf("%w: only the requester can cancel swap %d", ErrForbidden, id)
		}
		if err := checkRequestTransition("swap request", swap.Status, models.RequestCancelled); err != nil {
			return err
		}
		return swaps.UpdateFields(ctx, id, map[string]interface{}{"status": models.RequestCancelled})
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "swap_cancel", "shift_swap_request", id, "Swap cancelled by requester")
	return s.swapRepo.GetByID(ctx, id)
}

// Get returns one swap request
func (s *SwapService) Get(ctx context.Context, id uint) (*models.ShiftSwapRequest, error) {
	return s.swapRepo.GetByID(ctx, id)
}

// List returns every request for admins, and the actor's own requests otherwise
func (s *SwapService) List(ctx context.Context, actor Actor, status models.RequestStatus) ([]models.ShiftSwapRequest, error) {
	if actor.Role == models.RoleAdmin {
		return s.swapRepo.List(ctx, nil, status)
	}
	staffID := actor.StaffID
	return s.swapRepo.List(ctx, &staffID, status)
}

// exchangeOwners swaps the staff on two shifts. The first shift passes through the open
// pool so the (staff, date, shift) index never sees both rows under one owner.
func exchangeOwners(ctx context.Context, schedules *repository.ScheduleRepository, a, b *models.ShiftSchedule) error {
	ownerA, ownerB := *a.StaffID, *b.StaffID

	if err := schedules.SetOwner(ctx, a.ID, nil, a.IsAvailable); err != nil {
		return fmt.Errorf("failed to swap shifts: %w", err)
	}
	if err := schedules.SetOwner(ctx, b.ID, &ownerA, b.IsAvailable); err != nil {
		return conflictOrErr(err, ownerA, b)
	}
	if err := schedules.SetOwner(ctx, a.ID, &ownerB, a.IsAvailable); err != nil {
		return conflictOrErr(err, ownerB, a)
	}
	return nil
}

func conflictOrErr(err error, staffID uint, shift *models.ShiftSchedule) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%w: staff %d already has the %s shift on %s",
			ErrDuplicateShift, staffID, shift.Shift, models.FormatDate(shift.Date))
	}
	return fmt.Errorf("failed to swap shifts: %w", err)
}
